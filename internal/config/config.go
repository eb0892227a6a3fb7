package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "MYSTUFF_"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Log      Log      `koanf:"log"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
}

type Log struct {
	Level string `koanf:"level"`
}

type Storage struct {
	Driver string `koanf:"driver"`
	SQLite SQLite `koanf:"sqlite"`
}

type SQLite struct {
	Path string `koanf:"path"`
}

// Database configures the Postgres backend.
type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func defaults() Application {
	return Application{
		Listen: ":8181",
		Log:    Log{Level: "info"},
		Storage: Storage{
			Driver: DriverSQLite,
			SQLite: SQLite{Path: "./data/mystuff.db"},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "mystuff",
			Pass:   "",
			Name:   "mystuff",
			Schema: "public",
		},
	}
}

// Load reads the configuration from defaults, then the YAML file at path, then
// MYSTUFF_* environment variables (a local .env file is read into the environment first).
func Load(path string) (Application, error) {
	loadDotEnv(".env")

	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, app.Validate()
}

// loadDotEnv copies the variables of a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warnf("Could not read %s: %v", path, err)
		}
		return
	}
	log.Debugf("Loaded environment from %s", path)
}

// Validate reports every configuration problem at once.
func (a Application) Validate() error {
	var problems []error

	if a.Listen == "" {
		problems = append(problems, errors.New("listen address cannot be empty"))
	}
	if _, err := log.ParseLevel(a.Log.Level); err != nil {
		problems = append(problems, fmt.Errorf("invalid log level %q", a.Log.Level))
	}

	switch a.Storage.Driver {
	case DriverSQLite:
		if a.Storage.SQLite.Path == "" {
			problems = append(problems, errors.New("storage.sqlite.path cannot be empty when using the sqlite driver"))
		}
	case DriverPostgres:
		if a.Database.Host == "" {
			problems = append(problems, errors.New("db.host cannot be empty when using the postgres driver"))
		}
		if a.Database.Port < 1 || a.Database.Port > 65535 {
			problems = append(problems, fmt.Errorf("invalid db.port %d: must be between 1 and 65535", a.Database.Port))
		}
		if a.Database.Name == "" {
			problems = append(problems, errors.New("db.name cannot be empty when using the postgres driver"))
		}
	default:
		problems = append(problems, fmt.Errorf("invalid storage driver %q: must be %s or %s", a.Storage.Driver, DriverSQLite, DriverPostgres))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return nil
}

// LogLevel returns the configured logrus level, falling back to info.
func (a Application) LogLevel() log.Level {
	level, err := log.ParseLevel(a.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
