// Package config loads run parameters from a YAML file, FINLAB_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/marketdata"
)

const EnvPrefix = "FINLAB"

type Config struct {
	Log         LogConfig       `mapstructure:"log"`
	Seed        uint64          `mapstructure:"seed"`
	Workers     int             `mapstructure:"workers"`
	TradingDays int             `mapstructure:"trading_days"`
	Data        DataConfig      `mapstructure:"data"`
	ChartDir    string          `mapstructure:"chart_dir"`
	Print       bool            `mapstructure:"print"`
	Option      OptionConfig    `mapstructure:"option"`
	Bond        BondConfig      `mapstructure:"bond"`
	Vasicek     VasicekConfig   `mapstructure:"vasicek"`
	VaR         VaRConfig       `mapstructure:"var"`
	Markowitz   MarkowitzConfig `mapstructure:"markowitz"`
	Wiener      WienerConfig    `mapstructure:"wiener"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DataConfig selects the historical price source: "yahoo", "csv" or "none".
// DateLayout is the Go time layout of the csv date column.
type DataConfig struct {
	Source     string `mapstructure:"source"`
	Dir        string `mapstructure:"dir"`
	DateLayout string `mapstructure:"date_layout"`
	Adjust     bool   `mapstructure:"adjust"`
}

type OptionConfig struct {
	S0         float64 `mapstructure:"s0"`
	Strike     float64 `mapstructure:"strike"`
	T          float64 `mapstructure:"t"`
	Rf         float64 `mapstructure:"rf"`
	Sigma      float64 `mapstructure:"sigma"`
	Iterations int     `mapstructure:"iterations"`
}

type BondConfig struct {
	Principal    float64 `mapstructure:"principal"`
	CouponRate   float64 `mapstructure:"coupon_rate"`
	Maturity     int     `mapstructure:"maturity"`
	InterestRate float64 `mapstructure:"interest_rate"`
}

type VasicekConfig struct {
	Principal float64 `mapstructure:"principal"`
	R0        float64 `mapstructure:"r0"`
	Kappa     float64 `mapstructure:"kappa"`
	Theta     float64 `mapstructure:"theta"`
	Sigma     float64 `mapstructure:"sigma"`
	T         float64 `mapstructure:"t"`
	Steps     int     `mapstructure:"steps"`
	Paths     int     `mapstructure:"paths"`
}

type VaRConfig struct {
	Symbol     string  `mapstructure:"symbol"`
	Position   float64 `mapstructure:"position"`
	Confidence float64 `mapstructure:"confidence"`
	Days       float64 `mapstructure:"days"`
	Iterations int     `mapstructure:"iterations"`
	Start      string  `mapstructure:"start"`
	End        string  `mapstructure:"end"`
}

// MarkowitzConfig.Minimizer is "gonum", or "nlopt" in binaries built with the nlopt tag.
type MarkowitzConfig struct {
	Symbols    []string `mapstructure:"symbols"`
	Portfolios int      `mapstructure:"portfolios"`
	Start      string   `mapstructure:"start"`
	End        string   `mapstructure:"end"`
	Minimizer  string   `mapstructure:"minimizer"`
}

type WienerConfig struct {
	Dt float64 `mapstructure:"dt"`
	X0 float64 `mapstructure:"x0"`
	N  int     `mapstructure:"n"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("seed", 42)
	v.SetDefault("workers", 1)
	v.SetDefault("trading_days", 252)
	v.SetDefault("data.source", "none")
	v.SetDefault("data.dir", "")
	v.SetDefault("data.date_layout", marketdata.DateLayout)
	v.SetDefault("data.adjust", true)
	v.SetDefault("chart_dir", "")
	v.SetDefault("print", false)

	v.SetDefault("option.s0", 100)
	v.SetDefault("option.strike", 100)
	v.SetDefault("option.t", 1)
	v.SetDefault("option.rf", 0.05)
	v.SetDefault("option.sigma", 0.2)
	v.SetDefault("option.iterations", 1000)

	v.SetDefault("bond.principal", 1000)
	v.SetDefault("bond.coupon_rate", 0.1)
	v.SetDefault("bond.maturity", 3)
	v.SetDefault("bond.interest_rate", 0.04)

	v.SetDefault("vasicek.principal", 1000)
	v.SetDefault("vasicek.r0", 0.1)
	v.SetDefault("vasicek.kappa", 0.3)
	v.SetDefault("vasicek.theta", 0.1)
	v.SetDefault("vasicek.sigma", 0.03)
	v.SetDefault("vasicek.t", 1)
	v.SetDefault("vasicek.steps", 200)
	v.SetDefault("vasicek.paths", 1000)

	v.SetDefault("var.symbol", "C")
	v.SetDefault("var.position", 1e6)
	v.SetDefault("var.confidence", 0.95)
	v.SetDefault("var.days", 1)
	v.SetDefault("var.iterations", 100000)
	v.SetDefault("var.start", "2014-01-01")
	v.SetDefault("var.end", "2018-01-01")

	v.SetDefault("markowitz.symbols", []string{"AAPL", "WMT", "TSLA", "GE", "AMZN", "DB"})
	v.SetDefault("markowitz.portfolios", 10000)
	v.SetDefault("markowitz.start", "2012-01-01")
	v.SetDefault("markowitz.end", "2017-01-01")
	v.SetDefault("markowitz.minimizer", "gonum")

	v.SetDefault("wiener.dt", 0.1)
	v.SetDefault("wiener.x0", 0)
	v.SetDefault("wiener.n", 1000)
}

// Flags are the command-line overrides understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("quantlib", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.Uint64("seed", 42, "random seed")
	fs.Int("workers", 1, "parallel Monte-Carlo workers")
	fs.String("data-source", "none", "historical prices: yahoo, csv or none")
	fs.String("data-dir", "", "directory of <symbol>.csv files for the csv source")
	fs.String("chart-dir", "", "write PNG charts to this directory")
	fs.Bool("print", false, "also print results as text on stdout")
	return fs
}

var flagKeys = map[string]string{
	"log-level":   "log.level",
	"seed":        "seed",
	"workers":     "workers",
	"data-source": "data.source",
	"data-dir":    "data.dir",
	"chart-dir":   "chart_dir",
	"print":       "print",
}

// Load reads path, or ./config.yaml when path is empty and the file exists. flags
// may be nil; only flags that were set override the file and environment.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.TradingDays <= 0 {
		return failure.Invalid("trading_days must be > 0, got %d", c.TradingDays)
	}
	if c.Workers <= 0 {
		return failure.Invalid("workers must be > 0, got %d", c.Workers)
	}
	switch c.Data.Source {
	case "yahoo", "none":
	case "csv":
		if c.Data.Dir == "" {
			return failure.Invalid("data.dir is required for the csv source")
		}
	default:
		return failure.Invalid("unknown data.source %q", c.Data.Source)
	}
	if !(c.VaR.Confidence > 0 && c.VaR.Confidence < 1) {
		return failure.Invalid("var.confidence must be in (0,1), got %v", c.VaR.Confidence)
	}
	if len(c.Markowitz.Symbols) < 2 {
		return failure.Invalid("markowitz needs at least 2 symbols, got %d", len(c.Markowitz.Symbols))
	}
	switch c.Markowitz.Minimizer {
	case "gonum", "nlopt":
	default:
		return failure.Invalid("unknown markowitz.minimizer %q", c.Markowitz.Minimizer)
	}
	for _, r := range []struct{ name, start, end string }{
		{"var", c.VaR.Start, c.VaR.End},
		{"markowitz", c.Markowitz.Start, c.Markowitz.End},
	} {
		start, end, err := parseRange(r.start, r.end)
		if err != nil {
			return errors.Wrap(err, r.name)
		}
		if !end.After(start) {
			return failure.Invalid("%s: end %s is not after start %s", r.name, r.end, r.start)
		}
	}
	return nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(marketdata.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, failure.Invalid("start date %q: %v", start, err)
	}
	e, err := time.Parse(marketdata.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, failure.Invalid("end date %q: %v", end, err)
	}
	return s, e, nil
}

// VaRRange is the parsed history window for the VaR scenario.
func (c *Config) VaRRange() (time.Time, time.Time) {
	s, e, _ := parseRange(c.VaR.Start, c.VaR.End)
	return s, e
}

// MarkowitzRange is the parsed history window for the portfolio scenario.
func (c *Config) MarkowitzRange() (time.Time, time.Time) {
	s, e, _ := parseRange(c.Markowitz.Start, c.Markowitz.End)
	return s, e
}
