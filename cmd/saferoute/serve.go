package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	_ "lintang/saferoute/docs"
	"lintang/saferoute/pkg/config"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/kv"
	"lintang/saferoute/pkg/observability"
	"lintang/saferoute/pkg/server/rest"
	"lintang/saferoute/pkg/server/rest/service"
	"lintang/saferoute/pkg/watcher"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the road network and serve the ranking API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("listen", "", "server listen address")
	cmd.Flags().Bool("watch", true, "reload updates.json when it changes")
	_ = viper.BindPFlag("server.listen_addr", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("graph.watch_updates", cmd.Flags().Lookup("watch"))
	return cmd
}

func runServe(ctx context.Context, c *config.Config) error {
	log := observability.GetLogger()

	var store service.SnapshotStore
	var kvDB *kv.KVDB
	if c.Store.Enabled {
		db, err := pebble.Open(c.Store.Path, &pebble.Options{})
		if err != nil {
			return err
		}
		kvDB = kv.NewKVDB(db, true)
		defer kvDB.Close()
		store = kvDB
	}

	svc, err := newRouteService(c, log, store)
	if err != nil {
		return err
	}

	snap, fromCSV, err := initialSnapshot(c, kvDB)
	if err != nil {
		return err
	}
	if err := svc.LoadSnapshot(snap, fromCSV); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(c.Server.SwaggerURL),
	))
	rest.RouteRouter(r, svc, m)

	srv := &http.Server{
		Addr:              c.Server.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// watcher is set up before the server starts, a failure here leaves nothing running
	var w *watcher.UpdatesWatcher
	if c.Graph.WatchUpdates && c.Graph.UpdatesFile != "" {
		w, err = watcher.NewUpdatesWatcher(c.Graph.UpdatesFile, svc, 200*time.Millisecond, log)
		if err != nil {
			return err
		}
	}

	return serveUntilDone(ctx, srv, w, log)
}

// serveUntilDone runs srv and the optional updates watcher until ctx ends or one of them fails,
// then shuts the server down.
func serveUntilDone(ctx context.Context, srv *http.Server, w *watcher.UpdatesWatcher, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}

// initialSnapshot csv files win when they exist, otherwise the store's current snapshot is served.
func initialSnapshot(c *config.Config, kvDB *kv.KVDB) (*graph.Snapshot, bool, error) {
	if _, err := os.Stat(c.Graph.NodesFile); err == nil || kvDB == nil {
		snap, err := loadCSVSnapshot(c)
		return snap, true, err
	}

	rec, err := kvDB.LoadCurrentSnapshot()
	if err != nil {
		return nil, false, err
	}
	snap, err := graph.FromRecord(rec)
	return snap, false, err
}
