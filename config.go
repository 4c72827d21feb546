package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/hlchan/folio/service"
	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbols represents the tracked symbols.
	Symbols []string
	// FinnhubAPIKey is the finnhub service API key.
	FinnhubAPIKey string
	// DataSource is the primary market data source.
	DataSource string
	// StoreEndpoint represents the database connection endpoint.
	StoreEndpoint string
	// StoreUser is the database user.
	StoreUser string
	// StorePass is the database user pass.
	StorePass string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	switch cfg.DataSource {
	case service.FinnhubSource:
		if cfg.FinnhubAPIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("finnhub api key cannot be an empty string"))
		}
	case service.YahooSource:
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown data source: %s", cfg.DataSource))
	}
	if cfg.StoreEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("store endpoint cannot be an empty string"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("symbols", &cfg.Symbols, "the tracked symbols")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("finnhubapikey", &cfg.FinnhubAPIKey, "the finnhub api key")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("datasource", &cfg.DataSource, "the primary market data source")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storeendpoint", &cfg.StoreEndpoint, "the database connection endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storeuser", &cfg.StoreUser, "the database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storepass", &cfg.StorePass, "the database user pass")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	if cfg.DataSource == "" {
		cfg.DataSource = service.YahooSource
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = service.DefaultSymbols
	}

	return cfg.Validate()
}
