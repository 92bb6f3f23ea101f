package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/config"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/loader"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
	"github.com/Carmen-Shannon/oxy-flock/engine/stream"
)

// options holds the persistent flags shared by every sub-command.
type options struct {
	configPath string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "oxyflock",
		Short:        "GPU-style ping-pong flocking simulation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			common.SetLogger(cfg.NewLogger(cmd.ErrOrStderr()))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML or YAML config file (watched for live edits)")

	root.AddCommand(
		newServeCommand(opts),
		newViewCommand(opts),
		newSnapshotCommand(opts),
		newBakeCommand(opts),
		newEffectCommand(opts),
	)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// scene is everything a run needs before choosing its sinks.
type scene struct {
	flock     *flock.Flock
	presenter *presentation.Presenter
	source    *loader.PoseSource
	strip     *presentation.AnimationStrip
	model     config.Model
}

// buildScene allocates the flock and loads the entity model. A model that cannot be loaded is
// logged and the run continues without animation.
func buildScene(cfg *config.Config) (*scene, error) {
	f, err := flock.New(cfg.FlockConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create flock: %w", err)
	}

	sc := &scene{flock: f, model: cfg.ResolveModel()}
	presenterOpts := cfg.PresenterOptions()

	if src, err := loader.NewLoader(loader.BackendTypeGLTF).Load(sc.model.File); err != nil {
		common.Logger().Warn("model unavailable, drawing without animation", "file", sc.model.File, "error", err)
	} else if strip, err := src.Bake(cfg.Presentation.FPS); err != nil {
		common.Logger().Warn("failed to bake animation strip", "file", sc.model.File, "error", err)
	} else {
		sc.source, sc.strip = src, strip
		presenterOpts = append(presenterOpts, presentation.WithVertexCount(src.VertexCount()))
	}

	sc.presenter = presentation.NewPresenter(f.Width(), rand.New(rand.NewSource(cfg.Simulation.Seed+1)), presenterOpts...)
	return sc, nil
}

func (sc *scene) release() {
	if sc.strip != nil {
		sc.strip.Release()
	}
	sc.flock.Release()
}

// engineOptions returns the loop options implied by the configuration.
func (sc *scene) engineOptions(cfg *config.Config) []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithFlock(sc.flock),
		engine.WithPresenter(sc.presenter),
		engine.WithStrip(sc.strip),
		engine.WithParams(cfg.FlockParams()),
		engine.WithTickRate(float64(cfg.Loop.TickRate)),
		engine.WithProfiling(cfg.Loop.Profiling),
		engine.WithMaxDelta(cfg.Simulation.MaxDelta),
	}
}

// watchConfig applies live edits of the config file to a running engine until ctx is done.
func watchConfig(ctx context.Context, path string, eng engine.Engine) {
	if path == "" {
		return
	}
	go func() {
		err := config.Watch(ctx, path, func(cfg *config.Config) {
			eng.SetParams(cfg.FlockParams())
			eng.SetCount(cfg.VisibleCount())
			eng.SetSize(cfg.ResolveModel().Size)
			eng.SetTickRate(float64(cfg.Loop.TickRate))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			common.Logger().Error("config watch stopped", "error", err)
		}
	}()
}

// runEngine starts eng.Run in the background. The returned stop function quits the engine and
// blocks until Run has returned, so no tick is in flight once it is done.
func runEngine(eng engine.Engine) (stop func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run()
	}()
	return func() {
		eng.Quit()
		<-done
	}
}

// applyControl forwards stream client messages to the engine.
func applyControl(eng engine.Engine) func(stream.Control) {
	return func(c stream.Control) {
		switch c.Type {
		case stream.TypeParams:
			params, err := c.MergeParams(eng.Params())
			if err != nil {
				common.Logger().Warn("ignoring params control", "error", err)
				return
			}
			eng.SetParams(params)
		case stream.TypePointer:
			eng.SetPointer(c.X, c.Y)
		case stream.TypeCount:
			eng.SetCount(c.Count)
		case stream.TypeSize:
			eng.SetSize(c.Size)
		}
	}
}
