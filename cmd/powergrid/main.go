// Command powergrid extracts power infrastructure from OpenStreetMap,
// infers plant-to-substation connections by proximity, and writes CSV
// reports. This is the composition root: adapters are constructed here
// and wired into the CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jcherranz/spain-power-grid-analysis/internal/adapters/driven/config/file"
	"github.com/jcherranz/spain-power-grid-analysis/internal/adapters/driven/report/csvdir"
	"github.com/jcherranz/spain-power-grid-analysis/internal/adapters/driven/storage/sqlite"
	"github.com/jcherranz/spain-power-grid-analysis/internal/adapters/driving/cli"
	"github.com/jcherranz/spain-power-grid-analysis/internal/connectors/overpass"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/services"
	"github.com/jcherranz/spain-power-grid-analysis/internal/logger"
)

// version is overridden at release build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// POWERGRID_CONFIG_DIR and POWERGRID_DATA_DIR override the default
	// ~/.powergrid locations, mainly for tests and CI.
	configStore, err := file.NewConfigStore(os.Getenv("POWERGRID_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	extractor := overpass.NewClient(overpassOptions(configStore))

	// The archive is a convenience layer; a broken local database
	// should not block analysis.
	var archive driven.RunArchive
	store, err := sqlite.NewStore(os.Getenv("POWERGRID_DATA_DIR"))
	if err != nil {
		logger.Warn("run archive unavailable: %v", err)
	} else {
		archive = store
		defer store.Close()
	}

	newReporter := func(dir string) driven.ReportWriter {
		return csvdir.NewWriter(dir)
	}

	cli.SetVersion(version)
	cli.Configure(cli.Deps{
		Analyzer:    services.NewAnalysisOrchestrator(extractor, newReporter, archive),
		Inspector:   services.NewInspector(extractor),
		Extractor:   extractor,
		Archive:     archive,
		Config:      configStore,
		NewReporter: newReporter,
	})

	return cli.Execute()
}

// overpassOptions builds client options from config, leaving zero
// values for the client defaults.
func overpassOptions(cfg driven.ConfigStore) overpass.Options {
	opts := overpass.Options{
		URL: cfg.GetString(driven.KeyOverpassURL),
	}
	if secs := cfg.GetInt(driven.KeyOverpassTimeout); secs > 0 {
		opts.Timeout = time.Duration(secs) * time.Second
	}
	return opts
}
