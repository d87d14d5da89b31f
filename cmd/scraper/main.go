package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/runner"
	"jobharvest/internal/storage"
	"jobharvest/pkg/models"
)

// cliOptions holds everything the command line controls.
type cliOptions struct {
	configPath string
	printStats bool
	request    models.SearchRequest
}

func parseFlags(args []string) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to configuration file")
	fs.StringVar(&opts.request.SearchURL, "url", "", "listing URL to scrape (mutually exclusive with -query)")
	fs.StringVar(&opts.request.SearchQuery, "query", "", "search query, e.g. \"golang developer\"")
	fs.StringVar(&opts.request.Location, "location", "", "location filter, e.g. \"bangalore\"")
	fs.StringVar(&opts.request.Experience, "experience", "", "experience filter in years, e.g. \"3\"")
	fs.StringVar(&opts.request.JobType, "jobtype", "", "job type filter, e.g. \"full-time\"")
	fs.IntVar(&opts.request.MaxJobs, "max-jobs", 0, "stop after this many records (0 = unbounded)")
	fs.StringVar(&opts.request.Proxy, "proxy", "", "proxy URL for this run")
	fs.BoolVar(&opts.printStats, "stats", true, "print run stats as JSON on completion")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	store, err := storage.NewRedisStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Fatal("Storage unreachable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := runner.Execute(ctx, cfg, store, &opts.request)
	if err != nil {
		logger.Error("Run failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	if opts.printStats && stats != nil {
		out, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(out))
	}
}
