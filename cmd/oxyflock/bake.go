package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/engine/loader"
)

func newBakeCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "bake [model]",
		Short: "Bake a model's morph animation into an RGBA float strip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			path := cfg.ResolveModel().File
			if len(args) == 1 {
				path = args[0]
			}

			src, err := loader.NewLoader(loader.BackendTypeGLTF).Load(path)
			if err != nil {
				return err
			}
			strip, err := src.Bake(cfg.Presentation.FPS)
			if err != nil {
				return err
			}
			defer strip.Release()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: clip %q, %d vertices, %d poses, %d frames, strip %dx%d\n",
				src.Name, src.Clip, src.VertexCount(), len(src.Poses), strip.Frames, strip.Width, strip.Height)

			if out == "" {
				return nil
			}
			if err := os.WriteFile(out, strip.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write strip: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the raw little-endian RGBA32F texels to this file")
	return cmd
}
