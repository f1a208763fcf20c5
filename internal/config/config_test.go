package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "visit_planner", cfg.Database.Name)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ReportTTL)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Planning.OverdueThresholdDays)

	wc, err := cfg.Planning.WeekConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, wc.Start)
	assert.Equal(t, []time.Weekday{time.Thursday, time.Friday}, wc.PlanningDays)

	loc, err := cfg.Planning.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
jwt:
  secret: "s3cret"
  expiration: "30m"
planning:
  week_start: monday
  planning_days: [friday]
  overdue_threshold_days: 14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 14, cfg.Planning.OverdueThresholdDays)

	wc, err := cfg.Planning.WeekConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wc.Start)
	assert.Equal(t, []time.Weekday{time.Friday}, wc.PlanningDays)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("PLANNING_OVERDUE_THRESHOLD_DAYS", "45")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 45, cfg.Planning.OverdueThresholdDays)
}

func TestLoadConfigBootstrapManager(t *testing.T) {
	t.Setenv("BOOTSTRAP_MANAGER_EMAIL", "maya@example.com")
	t.Setenv("BOOTSTRAP_MANAGER_PASSWORD", "short")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)

	t.Setenv("BOOTSTRAP_MANAGER_PASSWORD", "correct horse")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", cfg.Bootstrap.ManagerEmail)
	assert.Equal(t, "Manager", cfg.Bootstrap.ManagerName)
}

func TestWeekConfigRejectsUnknownNames(t *testing.T) {
	_, err := PlanningConfig{WeekStart: "caturday"}.WeekConfig()
	assert.Error(t, err)

	_, err = PlanningConfig{WeekStart: "saturday", PlanningDays: []string{"thursday", "funday"}}.WeekConfig()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"thursday", "friday"}, splitList(" thursday, friday ,"))
}
