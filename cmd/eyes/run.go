package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/teslashibe/go-eyes/internal/config"
	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/eyes"
	"github.com/teslashibe/go-eyes/pkg/imageio"
	"github.com/teslashibe/go-eyes/pkg/pipeline"
	"github.com/teslashibe/go-eyes/pkg/protocol"
	"github.com/teslashibe/go-eyes/pkg/web"
)

// run executes one invocation of the command.
func run(ctx context.Context, cfg Config, stdout io.Writer) error {
	if cfg.Watch != "" {
		return watch(ctx, cfg.Watch, stdout)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	set, err := loadSet(ctx, cfg.Sources)
	if err != nil {
		return err
	}
	defer set.Close()
	set.Out = stdout

	if p != nil {
		if err := p.Apply(set); err != nil {
			return err
		}
		log.Info("pipeline applied", "ops", p.String(), "images", set.Len())
	}

	if err := set.Info(); err != nil {
		return err
	}

	if cfg.Save {
		paths, err := imageio.SaveSet(set, cfg.OutDir, cfg.Format)
		if err != nil {
			return err
		}
		for _, path := range paths {
			log.Info("image saved", "path", path)
		}
	}

	if cfg.Show {
		if err := set.Show(); err != nil {
			return err
		}
	}

	if cfg.Serve {
		return serve(ctx, set, cfg.Port)
	}
	return nil
}

// buildPipeline returns nil when no processing was requested.
func buildPipeline(cfg Config) (*pipeline.Pipeline, error) {
	if cfg.Pipeline != "" {
		return pipeline.Load(cfg.Pipeline)
	}

	corners, err := pipeline.ParseCorners(cfg.ROI)
	if err != nil {
		return nil, err
	}
	if cfg.Ops == "" && len(corners) == 0 {
		return nil, nil
	}
	return pipeline.ParseOps(cfg.Ops, corners)
}

func loadSet(ctx context.Context, args []string) (*eyes.Set, error) {
	if len(args) == 0 {
		return eyes.New(), nil
	}

	sources := make([]imageio.Source, len(args))
	for i, arg := range args {
		sources[i] = imageio.ParseSource(arg)
	}

	batch, err := imageio.LoadSources(ctx, sources)
	if err != nil {
		return nil, err
	}
	defer batch.Close()
	return batch.Set(), nil
}

func serve(ctx context.Context, set *eyes.Set, port string) error {
	srv := web.NewServer(set, port)
	srv.JPEGQuality = config.JPEGQuality()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return srv.Shutdown()
	}
}

// watch prints each event as one JSON line.
func watch(ctx context.Context, addr string, stdout io.Writer) error {
	enc := json.NewEncoder(stdout)
	return web.Watch(ctx, addr, func(msg *protocol.Message) {
		if err := enc.Encode(msg); err != nil {
			log.Warn("write event", "error", err)
		}
	})
}

