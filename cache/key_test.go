package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type region int

func (r region) String() string { return [...]string{"north", "south"}[r] }

func TestBuildKeyDeterministic(t *testing.T) {
	a := BuildKey("device", Arg("page", 1), Arg("pageSize", 20), Arg("keyword", nil))
	b := BuildKey("device", Arg("page", 1), Arg("pageSize", 20), Arg("keyword", nil))
	assert.Equal(t, a, b)
	assert.Equal(t, "device:page=1:pageSize=20:keyword=null", a)
}

func TestBuildKeyDistinctValues(t *testing.T) {
	a := BuildKey("device", Arg("page", 1), Arg("pageSize", 20), Arg("keyword", "a"))
	b := BuildKey("device", Arg("page", 1), Arg("pageSize", 20), Arg("keyword", "b"))
	assert.NotEqual(t, a, b)
}

func TestBuildKeyAbsentForms(t *testing.T) {
	var s *string
	var i *int
	var e error
	want := BuildKey("k", Arg("v", nil))
	assert.Equal(t, want, BuildKey("k", Arg("v", s)))
	assert.Equal(t, want, BuildKey("k", Arg("v", i)))
	assert.Equal(t, want, BuildKey("k", Arg("v", e)))
	assert.Equal(t, want, BuildKey("k", Arg("v", []int(nil))))
	assert.Equal(t, want, BuildKey("k", Arg("v", map[string]int(nil))))
	assert.Equal(t, "k:v=[]", BuildKey("k", Arg("v", []int{})))
	// documented limitation: the literal sentinel collides with absence
	assert.Equal(t, want, BuildKey("k", Arg("v", NullToken)))
}

func TestBuildKeyDereferencesPointers(t *testing.T) {
	s := "2025-01-01"
	n := 7
	assert.Equal(t, "stats:start=2025-01-01:n=7", BuildKey("stats", Arg("start", &s), Arg("n", &n)))
}

func TestBuildKeyOrderMatters(t *testing.T) {
	a := BuildKey("stats", Arg("start", "x"), Arg("end", nil))
	b := BuildKey("stats", Arg("start", nil), Arg("end", "x"))
	assert.NotEqual(t, a, b)
}

func TestBuildKeyEscapesSeparators(t *testing.T) {
	a := BuildKey("p", Arg("a", "x:b=y"))
	b := BuildKey("p", Arg("a", "x"), Arg("b", "y"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, `p:a=x\:b=y`, a)
	assert.NotEqual(t, BuildKey("p", Arg("a", `x\`), Arg("b", "y")), BuildKey("p", Arg("a", `x\:b=y`)))
}

func TestBuildKeyFormatting(t *testing.T) {
	ts := time.Date(2025, 1, 28, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, `k:t=2025-01-28T10\:30\:00Z`, BuildKey("k", Arg("t", ts)))
	assert.Equal(t, "k:r=south", BuildKey("k", Arg("r", region(1))))
	assert.Equal(t, "k:b=true:f=1.5", BuildKey("k", Arg("b", true), Arg("f", 1.5)))
	assert.Equal(t, "k", BuildKey("k"))
}
