package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/window"
)

func newViewCommand(opts *options) *cobra.Command {
	var (
		width, height int
		uncapped      bool
		software      bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window and draw the flock with WebGPU",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			sc, err := buildScene(cfg)
			if err != nil {
				return err
			}
			defer sc.release()

			win, err := window.NewWindow(window.WithTitle("oxy-flock"), window.WithSize(width, height))
			if err != nil {
				return err
			}
			defer win.Close()

			presentMode := renderer.PresentModeVSync
			if uncapped {
				presentMode = renderer.PresentModeUncapped
			}
			r, err := renderer.NewRenderer(
				renderer.BackendTypeWGPU,
				win,
				renderer.WithPresentMode(presentMode),
				renderer.WithBackground(sc.model.Background),
				renderer.WithForceSoftwareRenderer(software),
			)
			if err != nil {
				return err
			}
			defer r.Release()

			if sc.source != nil {
				if err := r.UploadMesh(sc.source.BasePositions, sc.source.Colors, sc.source.Indices); err != nil {
					return err
				}
			}

			eng := engine.NewEngine(append(sc.engineOptions(cfg), engine.WithWindow(win), engine.WithSink(r))...)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			watchConfig(ctx, opts.configPath, eng)

			eng.Run()
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 1280, "window width")
	cmd.Flags().IntVar(&height, "height", 720, "window height")
	cmd.Flags().BoolVar(&uncapped, "uncapped", false, "present without vsync")
	cmd.Flags().BoolVar(&software, "software", false, "force the software fallback adapter")
	return cmd
}
