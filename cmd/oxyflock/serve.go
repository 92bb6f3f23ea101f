package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/snapshot"
	"github.com/Carmen-Shannon/oxy-flock/engine/stream"
)

func newServeCommand(opts *options) *cobra.Command {
	var withSnapshots bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless and stream frames to websocket clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			sc, err := buildScene(cfg)
			if err != nil {
				return err
			}
			defer sc.release()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var eng engine.Engine
			srv := stream.NewServer(stream.WithOnControl(func(c stream.Control) {
				applyControl(eng)(c)
			}))
			defer srv.Close()

			engineOpts := append(sc.engineOptions(cfg), engine.WithSink(srv))
			if withSnapshots {
				snap, err := snapshot.NewSnapshotter(
					snapshot.WithSize(cfg.Snapshot.Width, cfg.Snapshot.Height),
					snapshot.WithBounds(cfg.Simulation.Bounds),
					snapshot.WithBackground(sc.model.Background),
					snapshot.WithDir(cfg.Snapshot.Dir),
					snapshot.WithEvery(cfg.Snapshot.Every),
				)
				if err != nil {
					return err
				}
				engineOpts = append(engineOpts, engine.WithSink(snap))
			}
			eng = engine.NewEngine(engineOpts...)
			watchConfig(ctx, opts.configPath, eng)

			mux := http.NewServeMux()
			mux.Handle(cfg.Server.Path, srv)
			httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			serveErr := make(chan error, 1)
			go func() {
				common.Logger().Info("streaming", "addr", cfg.Server.Addr, "path", cfg.Server.Path)
				serveErr <- httpServer.ListenAndServe()
			}()
			defer runEngine(eng)()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("stream server failed: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&withSnapshots, "snapshots", false, "also write PNG snapshots to the configured directory")
	return cmd
}
