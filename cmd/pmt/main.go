// Command pmt is the pipeline migration tool's CLI entry point. Its
// "migrate" subcommand discovers and applies task-bundle migrations for a
// batch of Renovate upgrade records.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/konflux-ci/pipeline-migration-tool/internal/applier"
	"github.com/konflux-ci/pipeline-migration-tool/internal/cache"
	"github.com/konflux-ci/pipeline-migration-tool/internal/config"
	"github.com/konflux-ci/pipeline-migration-tool/internal/logging"
	"github.com/konflux-ci/pipeline-migration-tool/internal/manager"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
	"github.com/konflux-ci/pipeline-migration-tool/internal/resolver"
	"github.com/konflux-ci/pipeline-migration-tool/internal/storage"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "migrate" {
		fmt.Fprintln(os.Stderr, "usage: pmt migrate [-u JSON_STR | -f PATH] [-l]")
		os.Exit(1)
	}

	if err := runMigrate(os.Args[2:]); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	renovateUpgrades := fs.String("u", "", "A JSON string converted from Renovate template field upgrades.")
	fs.StringVar(renovateUpgrades, "renovate-upgrades", "", "alias for -u")
	upgradesFile := fs.String("f", "", "Path to a file containing Renovate upgrades as encoded JSON.")
	fs.StringVar(upgradesFile, "upgrades-file", "", "alias for -f")
	useLegacyResolver := fs.Bool("l", false, "Use the legacy (simple-iteration) resolver.")
	fs.BoolVar(useLegacyResolver, "use-legacy-resolver", false, "alias for -l")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var upgradesData string
	switch {
	case *upgradesFile != "":
		data, err := os.ReadFile(*upgradesFile)
		if err != nil {
			return fmt.Errorf("reading upgrades file: %w", err)
		}
		upgradesData = string(data)
	case *renovateUpgrades != "":
		upgradesData = *renovateUpgrades
	default:
		return fmt.Errorf("one of -u/--renovate-upgrades or -f/--upgrades-file is required")
	}

	upgrades, err := cleanUpgrades(upgradesData)
	if err != nil {
		return err
	}
	if len(upgrades) == 0 {
		logging.Info("no task-bundle upgrades found in input, nothing to do")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())

	c, err := cache.New(config.CacheDir())
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}

	registryClient := registry.New(c, config.HTTPTimeout())

	var strategy resolver.Strategy = resolver.LinkedMigrations{}
	if *useLegacyResolver {
		strategy = resolver.SimpleIteration{}
	}

	mgr := manager.New(upgrades, registryClient, strategy, config.MaxConcurrency())

	logging.InfoContext(ctx, "resolving migrations for %d task bundle upgrades", len(mgr.Upgrades()))
	if err := mgr.ResolveMigrations(ctx); err != nil {
		return fmt.Errorf("resolving migrations: %w", err)
	}

	var recorder applier.Recorder
	store, err := storage.Open(config.StoragePath())
	if err != nil {
		logging.WarnContext(ctx, "continuing without migration history persistence: %v", err)
	} else {
		defer store.Close()
		recorder = store
	}

	return mgr.ApplyMigrations(ctx, applier.New(recorder))
}
