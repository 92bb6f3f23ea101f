package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/engine/displacement"
	"github.com/Carmen-Shannon/oxy-flock/engine/snapshot"
)

func newEffectCommand(opts *options) *cobra.Command {
	var (
		frames int
		dir    string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "effect",
		Short: "Render the tessellated displacement effect to PNG frames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			mesh := displacement.Tessellate(displacement.PlaneMesh(200, 60, 10, 3), 8, 3)
			effect, err := displacement.NewEffect(mesh, rand.New(rand.NewSource(cfg.Simulation.Seed)))
			if err != nil {
				return err
			}

			snap, err := snapshot.NewSnapshotter(snapshot.WithSize(size, size), snapshot.WithBackground("#050505"))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			dt := 1 / float32(cfg.Loop.TickRate)
			for i := 0; i < frames; i++ {
				path := filepath.Join(dir, fmt.Sprintf("effect-%04d.png", i))
				if err := snap.SaveEffect(path, effect, float32(i)*dt); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d faces, %d frames written to %s\n", mesh.FaceCount(), frames, dir)
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 120, "number of frames to render")
	cmd.Flags().StringVar(&dir, "out", "effect", "output directory")
	cmd.Flags().IntVar(&size, "size", 512, "image edge length")
	return cmd
}
