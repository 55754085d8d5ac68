package ldp

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geoknoesis/ldp-go/rdf"
)

const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the client to LDP servers.
	DefaultUserAgent = "ldp-go/1.0"
	// EnvPrefix is the prefix of environment overrides, e.g. LDP_BASE_URL.
	EnvPrefix = "LDP"
)

// Config holds client and mapper settings.
type Config struct {
	// BaseURL resolves relative resource paths. Optional.
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds each request. Zero disables the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// Format is the preferred representation: turtle, ntriples or jsonld.
	Format string `mapstructure:"format"`
	UserAgent string `mapstructure:"user_agent"`
	// IgnoredPredicates are server-managed predicates left out of save diffs.
	IgnoredPredicates []string `mapstructure:"ignored_predicates"`
	// CanonicalDiff relabels blank nodes before diffing.
	CanonicalDiff bool   `mapstructure:"canonical_diff"`
	LogLevel      string `mapstructure:"log_level"`

	Logger *zap.SugaredLogger `mapstructure:"-"` // nil = nop logger
}

// SetDefaults registers the default for every key, which also makes each
// key visible to environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("format", string(rdf.FormatTurtle))
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("ignored_predicates", []string{})
	v.SetDefault("canonical_diff", false)
	v.SetDefault("log_level", "info")
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Timeout:   DefaultTimeout,
		Format:    string(rdf.FormatTurtle),
		UserAgent: DefaultUserAgent,
		LogLevel:  "info",
	}
}

// LoadConfig reads the file at path, if any, over the defaults and applies
// LDP_* environment overrides. Files without an extension are read as TOML.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("toml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates configuration from a prepared viper
// instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that every set field is usable.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Newf("config: base_url %q is not an absolute URL", c.BaseURL)
		}
	}
	if c.Timeout < 0 {
		return errors.Newf("config: timeout %s is negative", c.Timeout)
	}
	if c.Format != "" {
		if _, ok := rdf.ParseFormat(c.Format); !ok {
			return errors.Wrapf(rdf.ErrUnsupportedFormat, "config: format %q", c.Format)
		}
	}
	for _, p := range c.IgnoredPredicates {
		if !rdf.IsAbsoluteIRI(p) {
			return errors.Newf("config: ignored predicate %q is not an absolute IRI", p)
		}
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrapf(err, "config: log_level %q", c.LogLevel)
		}
	}
	return nil
}

func (c Config) format() rdf.Format {
	if f, ok := rdf.ParseFormat(c.Format); ok {
		return f
	}
	return rdf.FormatTurtle
}

func (c Config) ignoredPredicates() []rdf.IRI {
	out := make([]rdf.IRI, 0, len(c.IgnoredPredicates))
	for _, p := range c.IgnoredPredicates {
		out = append(out, rdf.IRI{Value: p})
	}
	return out
}

func (c Config) logger() (*zap.SugaredLogger, error) {
	if c.Logger != nil {
		return c.Logger, nil
	}
	if c.LogLevel == "" {
		return nopIfNil(nil), nil
	}
	return NewLogger(c.LogLevel)
}
