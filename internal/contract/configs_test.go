package contract

import (
	"testing"

	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Repos: []RepoSpec{
			{Name: "reV", GitOwner: "NREL", GitRepo: "reV", PypiName: "NREL-reV"},
		},
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultPlotsDir, cfg.PlotsDir)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.NoneBackend, cfg.RunsBackend)
	assert.Equal(t, schema.MetricPypi180Cumulative, cfg.PlotMetric)
	assert.Equal(t, DefaultPlotYLabel, cfg.PlotYLabel)
	assert.Equal(t, DefaultRunsLimit, cfg.RunsLimit)
	assert.True(t, cfg.Color)
	assert.Empty(t, cfg.Metrics)
}

func TestProcessAndValidateRepos(t *testing.T) {
	t.Run("name defaults to git repo", func(t *testing.T) {
		input := validInput()
		input.Repos[0].Name = ""
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, "reV", cfg.Repos[0].Slug())
	})

	t.Run("missing owner rejected", func(t *testing.T) {
		input := validInput()
		input.Repos[0].GitOwner = ""
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "git_owner and git_repo are required")
	})

	t.Run("conda fields must pair", func(t *testing.T) {
		input := validInput()
		input.Repos[0].CondaOrg = "nrel"
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conda_org and conda_name must be set together")
	})
}

func TestProcessAndValidateMetrics(t *testing.T) {
	t.Run("known metrics accepted", func(t *testing.T) {
		input := validInput()
		input.Metrics = []string{"stargazers", " pypi_daily "}
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, []schema.MetricName{schema.MetricStargazers, schema.MetricPypiDaily}, cfg.Metrics)
	})

	t.Run("unknown metric rejected", func(t *testing.T) {
		input := validInput()
		input.Metrics = []string{"stardust"}
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown metric "stardust"`)
	})
}

func TestProcessAndValidateOutput(t *testing.T) {
	t.Run("invalid mode rejected", func(t *testing.T) {
		input := validInput()
		input.Output = "xml"
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output mode")
	})

	t.Run("negative precision rejected", func(t *testing.T) {
		input := validInput()
		input.Precision = -1
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "precision must be non-negative")
	})
}

func TestProcessAndValidateBackends(t *testing.T) {
	t.Run("unsupported backend rejected", func(t *testing.T) {
		input := validInput()
		input.CacheBackend = "oracle"
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cache-backend")
	})

	t.Run("mysql requires connection string", func(t *testing.T) {
		input := validInput()
		input.RunsBackend = "mysql"
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mysql backend requires a connection string")
	})

	t.Run("postgresql requires connection string", func(t *testing.T) {
		input := validInput()
		input.CacheBackend = "postgresql"
		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgresql backend requires a connection string")
	})
}

func TestWantsMetric(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.WantsMetric(schema.MetricViews), "empty filter wants everything")

	cfg.Metrics = []schema.MetricName{schema.MetricStargazers}
	assert.True(t, cfg.WantsMetric(schema.MetricStargazers))
	assert.False(t, cfg.WantsMetric(schema.MetricViews))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "no-at-sign"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost user=pg dbname=pg"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, ""))
}
