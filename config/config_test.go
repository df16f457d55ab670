package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlerive/quantlib/failure"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 252, c.TradingDays)
	assert.Equal(t, 10000, c.Markowitz.Portfolios)
	assert.Equal(t, []string{"AAPL", "WMT", "TSLA", "GE", "AMZN", "DB"}, c.Markowitz.Symbols)
	assert.Equal(t, "2012-01-01", c.Markowitz.Start)
	assert.Equal(t, 100000, c.VaR.Iterations)
	assert.Equal(t, 1000, c.Vasicek.Paths)
	assert.Equal(t, 200, c.Vasicek.Steps)
	assert.Equal(t, 0.2, c.Option.Sigma)
	assert.Equal(t, 3, c.Bond.Maturity)
	assert.Equal(t, 1000, c.Wiener.N)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "none", c.Data.Source)
	assert.Equal(t, "2006-01-02", c.Data.DateLayout)
	assert.Equal(t, "gonum", c.Markowitz.Minimizer)

	start, end := c.MarkowitzRange()
	assert.Equal(t, 2012, start.Year())
	assert.Equal(t, 2017, end.Year())
}

func TestLoad_FileEnvFlags(t *testing.T) {
	path := writeConfig(t, `
seed: 7
workers: 4
var:
  confidence: 0.99
  days: 10
markowitz:
  symbols: [AAPL, GE]
`)
	t.Setenv("FINLAB_VAR_POSITION", "250000")
	t.Setenv("FINLAB_WORKERS", "2")

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--workers=8", "--log-level=debug"}))

	c, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), c.Seed)
	assert.Equal(t, 0.99, c.VaR.Confidence)
	assert.Equal(t, 10.0, c.VaR.Days)
	assert.Equal(t, 250000.0, c.VaR.Position)
	assert.Equal(t, []string{"AAPL", "GE"}, c.Markowitz.Symbols)
	// flag beats env beats file
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_UnsetFlagsKeepFile(t *testing.T) {
	path := writeConfig(t, "workers: 3\n")
	flags := Flags()
	require.NoError(t, flags.Parse(nil))
	c, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"confidence":   "var:\n  confidence: 1.5\n",
		"source":       "data:\n  source: ftp\n",
		"csv dir":      "data:\n  source: csv\n",
		"dates":        "markowitz:\n  start: \"2017-01-01\"\n  end: \"2012-01-01\"\n",
		"bad date":     "var:\n  start: yesterday\n",
		"one symbol":   "markowitz:\n  symbols: [AAPL]\n",
		"trading days": "trading_days: 0\n",
		"minimizer":    "markowitz:\n  minimizer: simplex\n",
	} {
		_, err := Load(writeConfig(t, body), nil)
		assert.True(t, errors.Is(err, failure.ErrInvalidParameter), "%s: %v", name, err)
	}
}
