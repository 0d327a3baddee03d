package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
data:
  cases_path: /data/cases.csv
  occupancy_path: /data/occupancy.csv
general:
  region: Tirol
  bed_type: normal
  categories: ["25-34", "35-44"]
  from_date: "2021-03-01"
  to_date: "2021-04-30"
  forecast_days: 6
model:
  params:
    hospitalization_p: 0.1
    delay_lambda: 2.0
    stay_loc: 8.0
    stay_scale: 3.0
  bounds:
    hospitalization_p: {min: 0, max: 1}
    delay_lambda: {min: 0, max: 10}
    stay_loc: {min: 1, max: 30}
    stay_scale: {min: 0.5, max: 15}
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "/data/cases.csv", cfg.Data.CasesPath)
	assert.Equal(t, "Tirol", cfg.General.Region)
	assert.Equal(t, []string{"25-34", "35-44"}, cfg.General.Categories)
	assert.Equal(t, 6, cfg.General.ForecastDays)
	assert.InDelta(t, 0.1, cfg.Model.Params.HospitalizationP, 1e-12)
	assert.InDelta(t, 15.0, cfg.Model.Bounds.StayScale.Max, 1e-12)

	from, to, err := cfg.General.Window()
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01", from.Format("2006-01-02"))
	assert.Equal(t, "2021-04-30", to.Format("2006-01-02"))
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Model.Buffer)
	assert.Equal(t, 32, cfg.Model.MonteCarloIterations)
	assert.Equal(t, 100, cfg.Model.MaxGenerations)
	assert.NotZero(t, cfg.Model.SimulationSeed)
	assert.NotZero(t, cfg.Model.CalibrationSeed)
	assert.Equal(t, ":8080", cfg.API.Address)
}

func TestLoadDefaultBounds(t *testing.T) {
	noBounds := strings.Replace(validYAML, `  bounds:
    hospitalization_p: {min: 0, max: 1}
    delay_lambda: {min: 0, max: 10}
    stay_loc: {min: 1, max: 30}
    stay_scale: {min: 0.5, max: 15}
`, "", 1)
	require.NotEqual(t, validYAML, noBounds)

	cfg, err := Load(writeConfig(t, "config.yaml", noBounds))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Model.Bounds.HospitalizationP.Max)
	assert.Positive(t, cfg.Model.Bounds.StayScale.Min)
	assert.GreaterOrEqual(t, cfg.Model.Bounds.DelayLambda.Min, 0.0)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BEDCAST_GENERAL__REGION", "Wien")
	t.Setenv("BEDCAST_API__ADDRESS", ":9090")

	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)
	assert.Equal(t, "Wien", cfg.General.Region)
	assert.Equal(t, ":9090", cfg.API.Address)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
	}{
		{"missing region", "region: Tirol", `region: ""`},
		{"bad bed type", "bed_type: normal", "bed_type: IMC"},
		{"bad from date", `from_date: "2021-03-01"`, `from_date: "01.03.2021"`},
		{"inverted bounds", "delay_lambda: {min: 0, max: 10}", "delay_lambda: {min: 5, max: 1}"},
		{"zero stay scale", "stay_scale: 3.0", "stay_scale: 0"},
		{"zero stay scale bound", "stay_scale: {min: 0.5, max: 15}", "stay_scale: {min: 0, max: 15}"},
		{"negative lambda bound", "delay_lambda: {min: 0, max: 10}", "delay_lambda: {min: -1, max: 10}"},
		{"missing cases path", "cases_path: /data/cases.csv", `cases_path: ""`},
		{"zero forecast days", "forecast_days: 6", "forecast_days: 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			broken := strings.Replace(validYAML, tc.old, tc.new, 1)
			require.NotEqual(t, validYAML, broken)
			_, err := Load(writeConfig(t, "config.yaml", broken))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "config.yaml", validYAML+"  buffer: -1\n"))
	assert.Error(t, err, "negative buffer")
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "region = 'Tirol'"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCausalConversions(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	p := cfg.Model.CausalParams()
	assert.InDelta(t, 2.0, p.DelayLambda, 1e-12)
	assert.InDelta(t, 8.0, p.StayLoc, 1e-12)

	b := cfg.Model.CalibrationBounds()
	assert.InDelta(t, 1.0, b[0].Max, 1e-12)
	assert.InDelta(t, 0.5, b[3].Min, 1e-12)
}
