package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/peterbourgon/ff"
)

const EnvPrefix = "WB"

type Config struct {
	Addr            string
	Catalog         string
	CatalogRefresh  time.Duration
	LogLevel        string
	LogFile         string
	LogJSON         bool
	CORSOrigins     []string
	CPUProfile      string
	ShutdownTimeout time.Duration
}

// Load reads the server configuration from args, WB_* environment
// variables and an optional -config file, in that order of precedence.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("wb-server", flag.ContinueOnError)
	var (
		addr            = fs.String("addr", ":4000", "listen address")
		catalog         = fs.String("catalog", "", "aircraft catalog JSON file (empty uses the built-in fleet)")
		catalogRefresh  = fs.Int("catalog-refresh", 0, "minutes between catalog reloads (0 disables)")
		logLevel        = fs.String("log-level", "info", "debug, info, warn or error")
		logFile         = fs.String("log-file", "", "rotate logs into this file instead of stderr")
		logJSON         = fs.Bool("log-json", false, "log as JSON")
		corsOrigins     = fs.String("cors-origins", "*", "comma separated list of allowed origins")
		cpuProfile      = fs.String("cpuprofile", "", "write a CPU profile into this directory")
		shutdownTimeout = fs.Int("shutdown-timeout", 5, "seconds to wait for in-flight requests on shutdown")
		_               = fs.String("config", "", "config file")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		return Config{}, err
	}

	if *addr == "" {
		return Config{}, errors.New("addr must not be empty")
	}
	if *catalogRefresh < 0 {
		return Config{}, fmt.Errorf("catalog-refresh must not be negative: %d", *catalogRefresh)
	}
	if *shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("shutdown-timeout must be positive: %d", *shutdownTimeout)
	}

	var origins []string
	for _, o := range strings.Split(*corsOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return Config{
		Addr:            *addr,
		Catalog:         *catalog,
		CatalogRefresh:  time.Duration(*catalogRefresh) * time.Minute,
		LogLevel:        *logLevel,
		LogFile:         *logFile,
		LogJSON:         *logJSON,
		CORSOrigins:     origins,
		CPUProfile:      *cpuProfile,
		ShutdownTimeout: time.Duration(*shutdownTimeout) * time.Second,
	}, nil
}
