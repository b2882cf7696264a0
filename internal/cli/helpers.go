// Package cli implements the actions behind the nacre-suggest commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/nacre-sh/nacre/internal/config"
	"github.com/nacre-sh/nacre/internal/logger"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/suggest"
	"github.com/nacre-sh/nacre/internal/typecat"
)

// newEngine assembles a completion engine backed by an in-memory session.
// When configPath is empty the local config (walking up from the working
// directory) and then the user config are tried; a missing config is not an
// error.
func newEngine(configPath, logLevel string) (*suggest.Engine, error) {
	sess := session.New()
	session.RegisterBuiltins(sess)
	seedProcesses(sess)

	catalog := typecat.Default()
	catalog.RegisterType("System.Diagnostics.Process", reflect.TypeOf(session.Process{}))
	catalog.RegisterType("System.ServiceProcess.ServiceController", reflect.TypeOf(session.Service{}))

	log := logger.Discard()
	if logLevel != "" {
		log = logger.New(logLevel, os.Stderr)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	var opts suggest.Options
	if cfg != nil {
		opts = cfg.EngineOptions()
	}

	engine := suggest.NewEngine(suggest.Config{
		Host:    sess,
		Catalog: catalog,
		Options: opts,
		Logger:  log,
	})
	if cfg != nil {
		cfg.Apply(engine)
	}
	return engine, nil
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		if wd, err := os.Getwd(); err == nil {
			configPath = config.FindLocal(wd)
		}
	}
	if configPath == "" {
		candidate := config.DefaultPath()
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath == "" {
		return nil, nil
	}
	cfg, err := config.New().Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	return cfg, nil
}

// seedProcesses fills the session process table from /proc so process-name
// completion works against the live machine.
func seedProcesses(sess *session.Session) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return
	}
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(comm))
		if name != "" {
			sess.AddProcess(name, pid)
		}
	}
}
