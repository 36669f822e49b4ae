package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/model"
	"github.com/martinsuchenak/fqdngen/internal/normalize"
)

type Config struct {
	DefaultDomain      string
	InterfaceMapPath   string
	PreferInterfacePTR bool
	Sequential         bool
	Workers            int
	TimeoutSeconds     int
	LogLevel           string
	LogFormat          string
}

var (
	defaultDomain      string
	interfaceMapPath   string
	preferInterfacePTR bool
	sequential         bool
	workers            int
	timeoutSeconds     int
	logLevel           string
	logFormat          string
)

func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "default-domain",
			Usage:        "Domain applied to rows that do not carry one",
			EnvVars:      []string{"FQDNGEN_DEFAULT_DOMAIN"},
			DefaultValue: "example.com",
			AssignTo:     &defaultDomain,
		},
		&cli.StringFlag{
			Name:     "interface-map",
			Usage:    "JSON file mapping long interface type names to short codes (replaces the built-in table)",
			EnvVars:  []string{"FQDNGEN_INTERFACE_MAP"},
			AssignTo: &interfaceMapPath,
		},
		&cli.BoolFlag{
			Name:         "prefer-interface-ptr",
			Usage:        "Accept an existing interface-level PTR instead of flagging it for update",
			EnvVars:      []string{"FQDNGEN_PREFER_INTERFACE_PTR"},
			DefaultValue: true,
			AssignTo:     &preferInterfacePTR,
		},
		&cli.BoolFlag{
			Name:     "sequential",
			Usage:    "Evaluate rows one at a time instead of in a worker pool",
			EnvVars:  []string{"FQDNGEN_SEQUENTIAL"},
			AssignTo: &sequential,
		},
		&cli.IntFlag{
			Name:         "workers",
			Usage:        "Worker pool size for concurrent evaluation",
			EnvVars:      []string{"FQDNGEN_WORKERS"},
			DefaultValue: 20,
			AssignTo:     &workers,
		},
		&cli.IntFlag{
			Name:         "timeout",
			Usage:        "Per-lookup DNS timeout in seconds",
			EnvVars:      []string{"FQDNGEN_TIMEOUT"},
			DefaultValue: 5,
			AssignTo:     &timeoutSeconds,
		},
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (debug, info, warn, error)",
			EnvVars:      []string{"FQDNGEN_LOG_LEVEL"},
			DefaultValue: "info",
			AssignTo:     &logLevel,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			EnvVars:      []string{"FQDNGEN_LOG_FORMAT"},
			DefaultValue: "console",
			AssignTo:     &logFormat,
		},
	}
}

func Load() *Config {
	return &Config{
		DefaultDomain:      defaultDomain,
		InterfaceMapPath:   interfaceMapPath,
		PreferInterfacePTR: preferInterfacePTR,
		Sequential:         sequential,
		Workers:            workers,
		TimeoutSeconds:     timeoutSeconds,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
	}
}

// Settings resolves the loaded flags into the explicit value the pipeline
// consumes, reading the interface map file when one was given.
func (c *Config) Settings() (model.Settings, error) {
	table := normalize.DefaultInterfaceMap
	if c.InterfaceMapPath != "" {
		loaded, err := LoadInterfaceMap(c.InterfaceMapPath)
		if err != nil {
			return model.Settings{}, err
		}
		table = loaded
	}

	return model.Settings{
		DefaultDomain:      strings.ToLower(strings.TrimSpace(c.DefaultDomain)),
		InterfaceMap:       table,
		PreferInterfacePTR: c.PreferInterfacePTR,
		Concurrent:         !c.Sequential,
		Workers:            c.Workers,
		LookupTimeout:      time.Duration(c.TimeoutSeconds) * time.Second,
	}, nil
}

// LoadInterfaceMap reads a long-name to short-name table from a JSON object
// file. Keys are matched case-insensitively, so they are stored lowercased.
func LoadInterfaceMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading interface map: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing interface map %s: %w", path, err)
	}

	table := make(map[string]string, len(raw))
	for long, short := range raw {
		table[strings.ToLower(strings.TrimSpace(long))] = strings.ToLower(strings.TrimSpace(short))
	}
	return table, nil
}
