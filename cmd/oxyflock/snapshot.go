package main

import (
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/snapshot"
)

func newSnapshotCommand(opts *options) *cobra.Command {
	var (
		frames int
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Step the simulation at a fixed rate and write PNG snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if dir == "" {
				dir = cfg.Snapshot.Dir
			}
			sc, err := buildScene(cfg)
			if err != nil {
				return err
			}
			defer sc.release()

			snap, err := snapshot.NewSnapshotter(
				snapshot.WithSize(cfg.Snapshot.Width, cfg.Snapshot.Height),
				snapshot.WithBounds(cfg.Simulation.Bounds),
				snapshot.WithBackground(sc.model.Background),
				snapshot.WithDir(dir),
				snapshot.WithEvery(cfg.Snapshot.Every),
			)
			if err != nil {
				return err
			}

			eng := engine.NewEngine(append(sc.engineOptions(cfg), engine.WithSink(snap))...)
			dt := 1 / float32(cfg.Loop.TickRate)
			for i := 0; i < frames; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				if _, err := eng.Tick(dt); err != nil {
					return err
				}
			}
			common.Logger().Info("snapshots written", "dir", dir, "frames", frames, "written", snap.Written())
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 600, "number of frames to simulate")
	cmd.Flags().StringVar(&dir, "out", "", "output directory (defaults to snapshot.dir)")
	return cmd
}
