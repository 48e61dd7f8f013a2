package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/repotally/repotally/schema"
)

// Default values for configuration.
const (
	DefaultDataDir   = "data"
	DefaultPlotsDir  = "plots"
	DefaultPrecision = 1
	DefaultRunsLimit = 25

	// DefaultPlotYLabel supports a {name} placeholder replaced per repo.
	DefaultPlotYLabel = "{name} 180 Day Cumulative PyPI Downloads"

	// GithubTokenEnvVar is the fallback environment variable for the GitHub
	// API token when no token is set via config or REPOTALLY_GITHUB_TOKEN.
	GithubTokenEnvVar = "GITHUB_TOKEN"
)

// CacheGranularity defines the time granularity for response caching.
// Two fetches of the same URL within one granularity window share a cache
// entry, which keeps repeated runs inside GitHub rate limits.
const CacheGranularity = time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// RepoSpec identifies one tracked repository and its package names.
type RepoSpec struct {
	Name      string `mapstructure:"name"`
	GitOwner  string `mapstructure:"git_owner"`
	GitRepo   string `mapstructure:"git_repo"`
	PypiName  string `mapstructure:"pypi_name"`
	CondaOrg  string `mapstructure:"conda_org"`
	CondaName string `mapstructure:"conda_name"`
}

// HasPypi reports whether a PyPI package is configured.
func (r RepoSpec) HasPypi() bool { return r.PypiName != "" }

// HasConda reports whether a conda package is configured.
func (r RepoSpec) HasConda() bool { return r.CondaOrg != "" && r.CondaName != "" }

// Slug returns the identifier used for file and directory names.
func (r RepoSpec) Slug() string {
	if r.Name != "" {
		return r.Name
	}
	return r.GitRepo
}

// Config holds the runtime configuration for a repotally invocation.
// This struct remains the "final, validated" config.
type Config struct {
	Repos       []RepoSpec
	DataDir     string
	PlotsDir    string
	GithubToken string
	Metrics     []schema.MetricName // empty means all metrics per source

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Color      bool
	Verbose    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string
	RunsBackend    schema.DatabaseBackend
	RunsDBConnect  string

	PlotMetric schema.MetricName
	PlotYLabel string

	ShowRepo   string
	ShowMetric schema.MetricName

	RunsLimit int
}

// WantsMetric reports whether the run should fetch the given metric.
func (c *Config) WantsMetric(m schema.MetricName) bool {
	if len(c.Metrics) == 0 {
		return true
	}
	for _, want := range c.Metrics {
		if want == m {
			return true
		}
	}
	return false
}

// ConfigRawInput holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper unmarshals into this struct.
type ConfigRawInput struct {
	Repos       []RepoSpec `mapstructure:"repos"`
	DataDir     string     `mapstructure:"data-dir"`
	PlotsDir    string     `mapstructure:"plots-dir"`
	GithubToken string     `mapstructure:"github-token"`
	Metrics     []string   `mapstructure:"metrics"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Verbose    bool   `mapstructure:"verbose"`

	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	PlotMetric string `mapstructure:"plot-metric"`
	PlotYLabel string `mapstructure:"ylabel"`

	ShowRepo   string `mapstructure:"repo"`
	ShowMetric string `mapstructure:"metric"`

	RunsLimit int `mapstructure:"runs-limit"`
}

// knownMetrics indexes every metric name for validation.
var knownMetrics = func() map[schema.MetricName]bool {
	out := make(map[schema.MetricName]bool)
	for _, group := range [][]schema.MetricName{schema.GithubMetrics, schema.PypiMetrics, schema.CondaMetrics} {
		for _, m := range group {
			out[m] = true
		}
	}
	return out
}()

// ProcessAndValidate converts the raw input into the final validated config.
// It fills defaults, resolves the GitHub token from the environment, and
// rejects configurations that cannot run.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// 1. Repositories
	for i, spec := range input.Repos {
		if spec.GitOwner == "" || spec.GitRepo == "" {
			return fmt.Errorf("repos[%d]: git_owner and git_repo are required", i)
		}
		if spec.Name == "" {
			spec.Name = spec.GitRepo
		}
		if (spec.CondaOrg == "") != (spec.CondaName == "") {
			return fmt.Errorf("repos[%d]: conda_org and conda_name must be set together", i)
		}
		cfg.Repos = append(cfg.Repos, spec)
	}

	// 2. Directories
	cfg.DataDir = input.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.PlotsDir = input.PlotsDir
	if cfg.PlotsDir == "" {
		cfg.PlotsDir = DefaultPlotsDir
	}

	// 3. Metric filter
	for _, raw := range input.Metrics {
		m := schema.MetricName(strings.TrimSpace(raw))
		if m == "" {
			continue
		}
		if !knownMetrics[m] {
			return fmt.Errorf("unknown metric %q", m)
		}
		cfg.Metrics = append(cfg.Metrics, m)
	}

	// 4. Credentials. Token lookup order: config/flag, then environment.
	cfg.GithubToken = input.GithubToken
	if cfg.GithubToken == "" {
		cfg.GithubToken = os.Getenv(GithubTokenEnvVar)
	}

	// 5. Output settings
	switch out := schema.OutputMode(input.Output); out {
	case "", schema.TextOut:
		cfg.Output = schema.TextOut
	case schema.CSVOut, schema.JSONOut:
		cfg.Output = out
	default:
		return fmt.Errorf("invalid output mode %q: must be text, csv or json", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		return fmt.Errorf("precision must be non-negative, got %d", cfg.Precision)
	}
	cfg.Width = input.Width

	colorOn, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color setting: %w", err)
	}
	cfg.Color = colorOn
	cfg.Verbose = input.Verbose

	// 6. Persistence backends
	cfg.CacheBackend, err = parseBackend(input.CacheBackend, schema.SQLiteBackend)
	if err != nil {
		return fmt.Errorf("invalid cache-backend: %w", err)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	cfg.RunsBackend, err = parseBackend(input.RunsBackend, schema.NoneBackend)
	if err != nil {
		return fmt.Errorf("invalid runs-backend: %w", err)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// 7. Plot settings
	cfg.PlotMetric = schema.MetricName(input.PlotMetric)
	if cfg.PlotMetric == "" {
		cfg.PlotMetric = schema.MetricPypi180Cumulative
	}
	cfg.PlotYLabel = input.PlotYLabel
	if cfg.PlotYLabel == "" {
		cfg.PlotYLabel = DefaultPlotYLabel
	}

	// 8. Show settings
	cfg.ShowRepo = input.ShowRepo
	cfg.ShowMetric = schema.MetricName(input.ShowMetric)

	// 9. Run history
	cfg.RunsLimit = input.RunsLimit
	if cfg.RunsLimit < 0 {
		return fmt.Errorf("runs-limit must be non-negative, got %d", cfg.RunsLimit)
	}
	if cfg.RunsLimit == 0 {
		cfg.RunsLimit = DefaultRunsLimit
	}

	return nil
}

// parseBackend validates a backend string, applying a default for "".
func parseBackend(raw string, def schema.DatabaseBackend) (schema.DatabaseBackend, error) {
	switch b := schema.DatabaseBackend(raw); b {
	case "":
		return def, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend:
		return b, nil
	default:
		return "", fmt.Errorf("unsupported backend %q: must be sqlite, mysql, postgresql, or none", raw)
	}
}

// ValidateDatabaseConnectionString performs basic sanity checks on the
// connection string for server backends. SQLite accepts an empty string
// (a default file path is used) and none ignores the value.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("mysql backend requires a connection string (user:password@tcp(host:port)/dbname)")
		}
		if !strings.Contains(connStr, "@") {
			return fmt.Errorf("mysql connection string looks malformed: %q", connStr)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("postgresql backend requires a connection string (host=... user=... dbname=...)")
		}
	}
	return nil
}
