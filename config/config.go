package config

import (
	"io"
	"math/bits"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

const (
	EnvSweepInterval = "AGGCACHE_SWEEP_INTERVAL"
	EnvShards        = "AGGCACHE_SHARDS"
)

var ErrInvalidConfig = errors.New("invalid cache configuration")

// Duration is a time.Duration that reads and writes human strings such as "90s",
// "5m" or "1d" in YAML.
type Duration time.Duration

// ParseDuration parses s with day and week units on top of the standard ones.
func ParseDuration(s string) (Duration, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", s)
	}
	return Duration(d), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return str2duration.String(time.Duration(d))
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// NamespaceConfig tunes one namespace. A zero TTL keeps the built-in TTL.
type NamespaceConfig struct {
	TTL          Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	MaxEntries   int      `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	SingleFlight bool     `json:"single_flight,omitempty" yaml:"single_flight,omitempty"`
	CopyValues   bool     `json:"copy_values,omitempty" yaml:"copy_values,omitempty"`
}

// Options returns the namespace options this config asks for.
func (c NamespaceConfig) Options() []cache.Option {
	var opts []cache.Option
	if c.MaxEntries > 0 {
		opts = append(opts, cache.WithMaxEntries(c.MaxEntries))
	}
	if c.SingleFlight {
		opts = append(opts, cache.WithSingleFlight())
	}
	if c.CopyValues {
		opts = append(opts, cache.WithCopyValues())
	}
	return opts
}

// TTLOr returns the configured TTL, or def when none is set.
func (c NamespaceConfig) TTLOr(def time.Duration) time.Duration {
	if c.TTL > 0 {
		return c.TTL.Std()
	}
	return def
}

// Config is the cache configuration file.
type Config struct {
	SweepInterval Duration                   `json:"sweep_interval" yaml:"sweep_interval"`
	Shards        int                        `json:"shards" yaml:"shards"`
	Namespaces    map[string]NamespaceConfig `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SweepInterval: Duration(cache.DefaultSweepInterval),
		Shards:        cache.DefaultShards,
		Namespaces:    map[string]NamespaceConfig{},
	}
}

// Namespace returns the settings of the named namespace, zero if unset.
func (c *Config) Namespace(name string) NamespaceConfig {
	return c.Namespaces[name]
}

// Load reads the YAML file at filename on top of the defaults, then applies
// environment overrides and validates the result. An empty filename or a missing
// file yields the defaults.
func Load(filename string) (*Config, error) {
	c := Default()
	if filename != "" {
		of, err := os.Open(filename)
		switch {
		case err == nil:
			defer of.Close()
			if err := c.Decode(of); err != nil {
				return nil, errors.Wrapf(err, "failed to decode YAML config file: %s", filename)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "failed to open config file: %s", filename)
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode merges YAML from r into c.
func (c *Config) Decode(r io.Reader) error {
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if c.Namespaces == nil {
		c.Namespaces = map[string]NamespaceConfig{}
	}
	return nil
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// ApplyEnv overrides fields from the environment using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if val, ok := lookup(EnvSweepInterval); ok && val != "" {
		d, err := ParseDuration(val)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvSweepInterval)
		}
		c.SweepInterval = d
	}
	if val, ok := lookup(EnvShards); ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvShards)
		}
		c.Shards = n
	}
	return nil
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if c.SweepInterval < 0 {
		return errors.Wrapf(ErrInvalidConfig, "sweep_interval must be >= 0, got %s", c.SweepInterval)
	}
	if c.Shards < 0 {
		return errors.Wrapf(ErrInvalidConfig, "shards must be >= 0, got %d", c.Shards)
	}
	if c.Shards > 0 && bits.OnesCount(uint(c.Shards)) != 1 {
		return errors.Wrapf(ErrInvalidConfig, "shards must be a power of two, got %d", c.Shards)
	}
	names := make([]string, 0, len(c.Namespaces))
	for name := range c.Namespaces {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		ns := c.Namespaces[name]
		if ns.TTL < 0 {
			return errors.Wrapf(ErrInvalidConfig, "namespaces.%s.ttl must be >= 0, got %s", name, ns.TTL)
		}
		if ns.MaxEntries < 0 {
			return errors.Wrapf(ErrInvalidConfig, "namespaces.%s.max_entries must be >= 0, got %d", name, ns.MaxEntries)
		}
	}
	return nil
}

// ValidateNamespaces rejects settings for namespaces that are not in known.
func (c *Config) ValidateNamespaces(known []string) error {
	var unknown []string
	for name := range c.Namespaces {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return errors.Wrapf(ErrInvalidConfig, "unknown namespaces %s (known: %s)",
		strings.Join(unknown, ", "), strings.Join(known, ", "))
}
