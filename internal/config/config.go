package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host      string    `koanf:"host"`
	Database  Database  `koanf:"db"`
	Schedule  Schedule  `koanf:"schedule"`
	Reconcile Reconcile `koanf:"reconcile"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Schedule struct {
	// HorizonMonths is how far ahead occurrences are projected when the
	// caller does not ask for a specific horizon.
	HorizonMonths int `koanf:"horizonmonths"`
	// MonthlyTickCron fires the savings contribution job. Runs on the first
	// day of the month by default; the tick itself is idempotent per month.
	MonthlyTickCron string `koanf:"monthlytickcron"`
}

type Reconcile struct {
	// WindowDays bounds the ledger window scanned for candidate transactions
	// around an occurrence's scheduled date.
	WindowDays int `koanf:"windowdays"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "sonaeru",
			Pass:   "",
			Name:   "sonaeru",
			Schema: "sonaeru",
		},
		Schedule: Schedule{
			HorizonMonths:   24,
			MonthlyTickCron: "0 4 1 * *",
		},
		Reconcile: Reconcile{
			WindowDays: 90,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SONAERU_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SONAERU_")), "_", ".")
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

	return app, nil
}
