package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rmax-ai/docgraph/pkg/api"
	"github.com/rmax-ai/docgraph/pkg/build"
	"github.com/rmax-ai/docgraph/pkg/client"
	"github.com/rmax-ai/docgraph/pkg/manifest"
	"github.com/rmax-ai/docgraph/pkg/scanner"
	"github.com/rmax-ai/docgraph/web"
)

const initialLoadAttempts = 5

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "docgraph-d: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("daemon_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("daemon_stopped")
}

// daemon ties the artifact target to the HTTP server. refresh is serialized
// so watcher events and SIGHUP never run two builds at once.
type daemon struct {
	cfg    Config
	target *build.Target
	server *api.Server
	logger *slog.Logger

	mu sync.Mutex
}

func newDaemon(cfg Config, logger *slog.Logger) (*daemon, error) {
	target, err := build.OpenTarget(cfg.Artifact)
	if err != nil {
		return nil, err
	}

	server := api.NewServer(api.BlobSource{Store: target.Store, Key: target.Key}, cfg.Addr, cfg.ArtifactRoute)
	server.SetLogger(logger)
	switch cfg.WebAssetsMode {
	case "embedded":
		assets, err := web.Assets()
		if err != nil {
			target.Close()
			return nil, fmt.Errorf("failed to load embedded web assets: %w", err)
		}
		server.SetStaticFS(assets)
	case "fs":
		server.SetStaticFS(os.DirFS(cfg.StaticDir))
	}
	if cfg.TLSCert != "" {
		server.SetTLS(cfg.TLSCert, cfg.TLSKey)
	}

	return &daemon{cfg: cfg, target: target, server: server, logger: logger}, nil
}

// refresh rebuilds the artifact when a docs dir is configured, then reloads
// it into the server. A failed build leaves the served graph untouched.
func (d *daemon) refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.DocsDir != "" {
		opts := build.Options{
			DocsDir:      d.cfg.DocsDir,
			ManifestPath: d.cfg.Manifest,
			DocsPrefix:   d.cfg.DocsPrefix,
			Logger:       d.logger,
		}
		res, err := build.Build(ctx, opts)
		if err != nil {
			return err
		}
		if _, err := build.Write(ctx, d.target.Store, d.target.Key, res.Graph); err != nil {
			return err
		}
	}
	return d.server.Reload(ctx)
}

// watch starts the watchers enabled by the config. The caller stops them.
func (d *daemon) watch(ctx context.Context) ([]*api.Watcher, error) {
	onChange := func() {
		if err := d.refresh(ctx); err != nil {
			d.logger.Error("refresh_failed", "error", err)
		}
	}

	var watchers []*api.Watcher
	if d.cfg.DocsDir != "" {
		w, err := api.WatchTree(d.cfg.DocsDir, api.DefaultDebounce, isBuildInput, onChange)
		if err != nil {
			return nil, err
		}
		watchers = append(watchers, w)
		d.logger.Info("watching_docs", "dir", d.cfg.DocsDir)
	} else if d.target.Path != "" {
		w, err := api.WatchFile(d.target.Path, api.DefaultDebounce, onChange)
		if err != nil {
			return nil, err
		}
		watchers = append(watchers, w)
		d.logger.Info("watching_artifact", "path", d.target.Path)
	}

	for _, w := range watchers {
		go w.Run(ctx)
	}
	return watchers, nil
}

func isBuildInput(path string) bool {
	name := filepath.Base(path)
	return scanner.IsDocument(name) || slices.Contains(manifest.Candidates, name)
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	d, err := newDaemon(cfg, logger)
	if err != nil {
		return err
	}
	defer d.target.Close()

	logger.Info("daemon_starting", "addr", cfg.Addr, "artifact", cfg.Artifact, "docs_dir", cfg.DocsDir, "web_assets", cfg.WebAssetsMode, "watch", cfg.Watch)

	// The artifact may still be on its way (a build running next to us), so
	// the first load is retried before serving starts.
	err = client.Retry(ctx, client.DefaultBackoff(), initialLoadAttempts, func(ctx context.Context) error {
		err := d.refresh(ctx)
		if err != nil {
			logger.Warn("initial_load_failed", "error", err)
		}
		return err
	})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		logger.Error("serving_without_artifact", "error", err)
	}

	if cfg.Watch {
		watchers, err := d.watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer func() {
			for _, w := range watchers {
				w.Stop()
			}
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(d.server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return d.server.Stop(shutdownCtx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("sighup_received")
				if err := d.refresh(gctx); err != nil {
					logger.Error("refresh_failed", "error", err)
				}
			}
		}
	})
	return g.Wait()
}
