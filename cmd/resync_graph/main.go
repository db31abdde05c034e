package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/app"
	"github.com/lgrosz/climb-catalog/internal/data/graph"
	"github.com/lgrosz/climb-catalog/internal/platform/envutil"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/platform/neo4jdb"
)

func main() {
	var (
		envFile string
		dryRun  bool
	)
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flag.BoolVar(&dryRun, "dry-run", false, "read the snapshot and print its size without touching neo4j")
	flag.Parse()

	if err := run(envFile, dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "resync_graph: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string, dryRun bool) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := loadSnapshot(ctx, store.DB())
	if err != nil {
		return err
	}
	log.Info("snapshot loaded",
		"areas", len(snap.Areas),
		"formations", len(snap.Formations),
		"climbs", len(snap.Climbs),
		"rows", snap.Rows(),
	)
	if dryRun {
		return nil
	}

	client, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("NEO4J_URI is not set")
	}
	defer client.Close(context.Background())

	projection := graph.NewProjection(log, client)
	projection.EnsureSchema(ctx)

	bar := progressbar.Default(int64(snap.Rows()), "Resyncing containment graph")
	if err := projection.Resync(ctx, snap, func(n int) { _ = bar.Add(n) }); err != nil {
		return err
	}
	_ = bar.Finish()
	log.Info("graph resync complete", "rows", snap.Rows())
	return nil
}

// loadSnapshot reads every node and containment table concurrently.
func loadSnapshot(ctx context.Context, db *gorm.DB) (*graph.Snapshot, error) {
	snap := &graph.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	load := func(table string, dst any) {
		g.Go(func() error {
			if err := db.WithContext(gctx).Order("1").Find(dst).Error; err != nil {
				return fmt.Errorf("load %s: %w", table, err)
			}
			return nil
		})
	}
	load("areas", &snap.Areas)
	load("formations", &snap.Formations)
	load("climbs", &snap.Climbs)
	load("area_belongs_to", &snap.AreaParents)
	load("formation_belongs_to", &snap.FormationParents)
	load("climb_belongs_to", &snap.ClimbParents)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
