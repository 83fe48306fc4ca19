// Command datamart ingests a folder of spreadsheet exports, answers queries
// over the merged datasets, and optionally exports a snapshot to a SQL
// backend.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"datamart/internal/config"
	"datamart/internal/ingest"
	"datamart/internal/metrics"
	"datamart/internal/metrics/datadog"
	"datamart/internal/registry"
	"datamart/internal/storage"
	"datamart/internal/table"

	// register all snapshot backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "datamart/internal/storage/all"
)

// main loads the config, optionally initializes a metrics backend, runs one
// ingestion pass, and serves the requested queries on stdout.
func main() {
	var cfg config.Config

	flag.StringVar(&cfg.DataFolder, "data", "", "watched data folder (env DATA_FOLDER)")
	flag.StringVar(&cfg.CacheFolder, "cache", "", "CSV conversion cache folder (env CSV_CACHE_FOLDER)")
	flag.StringVar(&cfg.ManifestPath, "manifest", "", "scan manifest path (env LAST_SCAN_FILE)")
	flag.StringVar(&cfg.Anchor, "anchor", "", "rolling window anchor: data or now (env RANGE_ANCHOR)")

	var (
		metricsBackendFlg = flag.String("metrics-backend", "", "metrics backend to use (datadog, none)")
		snapshotKind      = flag.String("snapshot-backend", "", "snapshot backend kind (sqlite, postgres, mssql)")
		snapshotDSN       = flag.String("snapshot-dsn", "", "snapshot backend DSN")
		validate          = flag.Bool("validate", false, "validate the configuration and exit")
		verbose           = flag.Bool("v", false, "enable verbose logs")

		search   = flag.String("search", "", "search members by name or email")
		member   = flag.String("member", "", "print orders and payments for a member email")
		lastDays = flag.Int("last-days", 0, "print orders from the last N days")
		month    = flag.Int("month", 0, "print orders in the given month (1-12)")
		year     = flag.Int("year", 0, "restrict -month to a year (0 means all years)")
		top      = flag.Int("top", 0, "print the top N members by spend")
	)
	flag.Parse()

	cfg.ApplyDefaults()

	issues := cfg.Validate()
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if *validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("%v", err)
	}

	// Decide metrics backend: flag → env → default.
	backendName := *metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		// The Datadog backend buffers metrics, submits periodically, and
		// submits one final time at shutdown (Close()).
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    "datamart_ingest",
			Tags:       extraTags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v tags=%v", backendName, extraTags)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	start := time.Now()

	reg, err := ingest.Run(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !reg.Loaded() {
		log.Printf("no datasets loaded from %s", cfg.DataFolder)
		os.Exit(0)
	}

	for _, line := range reg.Descriptions() {
		fmt.Println(line)
	}
	printSummary(reg.Summarize())

	if *search != "" {
		printTable("members matching "+*search, reg.SearchMembers(*search))
	}
	if *member != "" {
		printTable("orders for "+*member, reg.OrdersForMember(*member))
		printTable("payments for "+*member, reg.PaymentsForMember(*member))
	}
	if *lastDays > 0 {
		printTable(fmt.Sprintf("orders in the last %d days", *lastDays),
			reg.OrdersInRange(nil, nil, *lastDays))
	}
	if *month >= 1 && *month <= 12 {
		m := time.Month(*month)
		printTable("orders in "+m.String(), reg.OrdersInMonth(m, *year))
	}
	if *top > 0 {
		printTopMembers(reg.TopMembersBySpend(*top))
	}

	if *snapshotKind != "" {
		ctx := context.Background()
		repo, err := storage.New(ctx, storage.Config{Kind: *snapshotKind, DSN: *snapshotDSN})
		if err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		defer repo.Close()

		if err := storage.Export(ctx, repo, reg); err != nil {
			log.Fatalf("snapshot: %v", err)
		}
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func printSummary(s registry.Summary) {
	fmt.Println("\n== summary ==")
	if s.TotalMembers != nil {
		fmt.Printf("total members: %d\n", *s.TotalMembers)
	}
	if s.TotalOrders != nil {
		fmt.Printf("total orders: %d\n", *s.TotalOrders)
	}
	if s.PaidOrders != nil {
		fmt.Printf("paid orders: %d\n", *s.PaidOrders)
	}
	if s.TotalRevenue != nil {
		fmt.Printf("total revenue: %.2f\n", *s.TotalRevenue)
	}
}

func printTopMembers(ranking []registry.MemberSpend) {
	fmt.Println("\n== top members by spend ==")
	if len(ranking) == 0 {
		fmt.Println("(no rows)")
		return
	}
	for i, m := range ranking {
		fmt.Printf("%2d. %s  %.2f (%d orders)\n", i+1, m.Email, m.TotalSpent, m.OrderCount)
	}
}

func printTable(title string, t *table.Table) {
	fmt.Printf("\n== %s ==\n", title)
	if t == nil || t.NumRows() == 0 {
		fmt.Println("(no rows)")
		return
	}
	w := csv.NewWriter(os.Stdout)
	_ = w.Write(t.Columns)
	for _, row := range t.Rows {
		_ = w.Write(row)
	}
	w.Flush()
}
