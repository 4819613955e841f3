package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anothingguy/revenue-spacebar/internal/config"
	"github.com/anothingguy/revenue-spacebar/internal/loader"
	"github.com/anothingguy/revenue-spacebar/internal/metrics"
	"github.com/anothingguy/revenue-spacebar/internal/metrics/datadog"
	"github.com/anothingguy/revenue-spacebar/internal/metrics/prompush"
	"github.com/anothingguy/revenue-spacebar/internal/parser/csv"
	"github.com/anothingguy/revenue-spacebar/internal/schema"
	"github.com/anothingguy/revenue-spacebar/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/anothingguy/revenue-spacebar/internal/storage/all"
)

// main is the entry point for the csvload binary. It loads configuration from
// the environment (optionally seeded from .env), opens the storage backend,
// and runs each requested dataset: provision the table, import every file in
// the dataset's folder, create indexes, and print a summary.
func main() {
	var (
		datasetFlg        string
		fileFlg           string
		backendFlg        string
		batchSizeFlg      int
		envFileFlg        string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
	)

	flag.StringVar(&datasetFlg, "dataset", "", "dataset to import (org, per, raw_feed_per); empty runs all")
	flag.StringVar(&fileFlg, "file", "", "import a single file instead of the dataset folder (requires -dataset)")
	flag.StringVar(&backendFlg, "backend", "", "storage backend (overrides env DB_BACKEND)")
	flag.IntVar(&batchSizeFlg, "batch-size", 0, "rows per insert batch (overrides env BATCH_SIZE)")
	flag.StringVar(&envFileFlg, "env-file", ".env", "path to .env file")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides env DATADOG_ADDR)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	if err := config.LoadDotenv(envFileFlg); err != nil {
		fatalf("load env file: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fatalf("%v", err)
	}
	if backendFlg != "" {
		cfg.Backend = backendFlg
	}
	if batchSizeFlg > 0 {
		cfg.BatchSize = batchSizeFlg
	}
	if pushGatewayURLFlg != "" {
		cfg.PushgatewayURL = pushGatewayURLFlg
	}
	if datadogAddrFlg != "" {
		cfg.DatadogAddr = datadogAddrFlg
	}

	datasets, err := selectDatasets(datasetFlg)
	if err != nil {
		fatalf("%v", err)
	}
	if fileFlg != "" && len(datasets) != 1 {
		fatalf("-file requires -dataset")
	}

	setupMetrics(metricsBackendFlg, cfg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	dsn, err := cfg.BuildDSN()
	if err != nil {
		fatalf("%v", err)
	}

	ctx := context.Background()
	sink, err := storage.New(ctx, storage.Config{Kind: cfg.Backend, DSN: dsn})
	if err != nil {
		fatalf("open %s backend: %v (registered: %s)", cfg.Backend, err, strings.Join(storage.Kinds(), ", "))
	}
	defer sink.Close()

	start := time.Now()
	for _, ds := range datasets {
		runDataset(ctx, sink, cfg, ds, fileFlg, *verbose)
	}
	log.Printf("all datasets done in %s", time.Since(start).Truncate(time.Millisecond))
}

// selectDatasets resolves the -dataset flag: one named dataset, or all of
// them in production order.
func selectDatasets(name string) ([]schema.Dataset, error) {
	if name == "" {
		return schema.Datasets(), nil
	}
	ds, err := schema.Lookup(name)
	if err != nil {
		return nil, err
	}
	return []schema.Dataset{ds}, nil
}

// runDataset executes the full import cycle for one dataset. Failures inside
// the run are logged; a broken dataset never stops the ones after it.
func runDataset(ctx context.Context, sink storage.Sink, cfg config.Config, ds schema.Dataset, singleFile string, verbose bool) {
	start := time.Now()
	log.Printf("dataset %s: starting (table %s)", ds.Name, ds.Schema.Table)

	l := loader.New(sink, ds, loader.Options{BatchSize: cfg.BatchSize, CSV: csv.Options{}})

	if err := l.Provision(ctx); err != nil {
		log.Printf("ERROR: dataset %s: %v", ds.Name, err)
		return
	}

	var rep *loader.Report
	if singleFile != "" {
		rep = l.ImportFiles(ctx, []string{singleFile})
	} else {
		folder := filepath.Join(cfg.DataRoot, ds.Folder)
		var err error
		rep, err = l.ImportFolder(ctx, folder)
		if err != nil {
			log.Printf("ERROR: dataset %s: %v", ds.Name, err)
			return
		}
	}

	l.CreateIndexes(ctx)

	elapsed := time.Since(start).Truncate(time.Millisecond)
	log.Printf("dataset %s: %d rows from %d files (%d skipped, %d failed) in %s",
		ds.Name, rep.RowsImported, rep.FilesLoaded, rep.FilesSkipped, rep.FilesFailed, elapsed)

	stats, err := sink.TableStats(ctx, ds.Schema.Table)
	if err != nil {
		log.Printf("WARN: dataset %s: table stats: %v", ds.Name, err)
		return
	}
	if stats.Size != "" {
		log.Printf("dataset %s: table %s now holds %d rows (%s)", ds.Name, ds.Schema.Table, stats.Rows, stats.Size)
	} else {
		log.Printf("dataset %s: table %s now holds %d rows", ds.Name, ds.Schema.Table, stats.Rows)
	}
	if verbose {
		for _, o := range rep.Files {
			log.Printf("dataset %s:   %s rows=%d skipped=%v err=%v",
				ds.Name, filepath.Base(o.Path), o.RowsImported, o.Skipped, o.Err)
		}
	}
}

// setupMetrics installs the requested metrics backend: flag → env → none.
func setupMetrics(name string, cfg config.Config, verbose bool) {
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}
	switch name {
	case "pushgateway":
		gwURL := cfg.PushgatewayURL
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("csvload", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s", gwURL)
		metrics.SetBackend(b)

	case "datadog":
		addr := cfg.DatadogAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "csvload."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%s", addr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
