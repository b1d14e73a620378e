/*
Package config assembles server configuration.

PRECEDENCE (highest first):
  1. Command-line flags that were explicitly set
  2. Environment variables, prefix PAYROLL_ (PAYROLL_DB_DSN for db.dsn)
  3. Variables from the optional .env file (-env-file, default ".env")
  4. Defaults below

KEYS:
  port                             HTTP port                      8080
  db.driver                        sqlite3 | postgres             sqlite3
  db.dsn                           file path or connection string payroll.db
  seed                             scenario id loaded on startup  ""
  cors.origins                     comma-separated origins        http://localhost:3000,http://localhost:5173
  rates.base                       base rate per lesson           50000
  rates.mode                       multiply | class | type        multiply
  rates.precision                  decimal places of amounts      0
  rates.coefficients.normal        class-type coefficient         1.0
  rates.coefficients.special                                      1.5
  rates.coefficients.international                                2.0

  The rates.* keys only bootstrap the settings row of an empty store. Once
  settings exist they are managed through the API.
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/warp/teaching-payroll/payment"
)

const envPrefix = "PAYROLL"

type Config struct {
	Port        int
	DBDriver    string
	DBDSN       string
	Seed        string
	CORSOrigins []string
	Rates       payment.RateConfig
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"port":   "port",
	"driver": "db.driver",
	"db":     "db.dsn",
	"seed":   "seed",
}

// Load parses args (without the program name) and resolves the configuration.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.Int("port", 8080, "HTTP server port")
	fs.String("driver", "sqlite3", "database driver (sqlite3 or postgres)")
	fs.String("db", "payroll.db", "database path or connection string")
	fs.String("seed", "", "scenario to load on startup")
	envFile := fs.String("env-file", ".env", "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			return nil, fmt.Errorf("config.godotenv(%s): %w", *envFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.os.Stat(%s): %w", *envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "payroll.db")
	v.SetDefault("seed", "")
	v.SetDefault("cors.origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("rates.base", "50000")
	v.SetDefault("rates.mode", string(payment.ModeMultiply))
	v.SetDefault("rates.precision", 0)
	v.SetDefault("rates.coefficients.normal", "1.0")
	v.SetDefault("rates.coefficients.special", "1.5")
	v.SetDefault("rates.coefficients.international", "2.0")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetInt("port"),
		DBDriver: v.GetString("db.driver"),
		DBDSN:    v.GetString("db.dsn"),
		Seed:     v.GetString("seed"),
	}
	for _, o := range strings.Split(v.GetString("cors.origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	rates, err := ratesFromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.Rates = rates
	return cfg, nil
}

func ratesFromViper(v *viper.Viper) (payment.RateConfig, error) {
	base, err := decimal.NewFromString(v.GetString("rates.base"))
	if err != nil {
		return payment.RateConfig{}, fmt.Errorf("invalid rates.base: %w", err)
	}
	rates := payment.RateConfig{
		BaseRate:              base,
		ClassTypeCoefficients: make(map[payment.ClassType]decimal.Decimal, len(payment.ClassTypes)),
		Mode:                  payment.CoefficientMode(v.GetString("rates.mode")),
		Precision:             v.GetInt32("rates.precision"),
	}
	for _, ct := range payment.ClassTypes {
		key := "rates.coefficients." + string(ct)
		c, err := decimal.NewFromString(v.GetString(key))
		if err != nil {
			return payment.RateConfig{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		rates.ClassTypeCoefficients[ct] = c
	}
	if err := rates.Validate(); err != nil {
		return payment.RateConfig{}, fmt.Errorf("invalid rate configuration: %w", err)
	}
	return rates, nil
}
