package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/agentuity/aggcache/cache"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableBorderColor = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	tableBorderStyle = lipgloss.NewStyle().Foreground(tableBorderColor)
)

// StatsHeaders are the columns of the cache health table.
var StatsHeaders = []string{"Namespace", "TTL", "Total", "Valid", "Expired", "Hits", "Misses", "Hit %", "Evictions"}

// Table writes rows under headers as a bordered table.
func Table(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func statsRow(s cache.NamespaceStats) []string {
	ttl := ""
	if s.TTL > 0 {
		ttl = s.TTL.String()
	}
	return []string{
		s.Name,
		ttl,
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Valid),
		strconv.Itoa(s.Expired),
		strconv.FormatInt(s.Hits, 10),
		strconv.FormatInt(s.Misses, 10),
		fmt.Sprintf("%.1f", s.HitRatio()*100),
		strconv.FormatInt(s.Evictions, 10),
	}
}

// StatsRows renders one row per namespace followed by the totals row.
func StatsRows(report cache.Report) [][]string {
	rows := make([][]string, 0, len(report)+1)
	for _, s := range report {
		rows = append(rows, statsRow(s))
	}
	return append(rows, statsRow(report.Totals()))
}

// StatsTable writes the cache health report as a table.
func StatsTable(w io.Writer, report cache.Report) {
	Table(w, StatsHeaders, StatsRows(report))
}
