// Command bifrost runs the read-only GraphQL gateway over a
// MediaWiki/Semantic MediaWiki psychoactive-substance knowledge base.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/graph-gophers/graphql-go"

	"github.com/psychonautwiki/bifrost/internal/config"
	"github.com/psychonautwiki/bifrost/internal/httpserver"
	"github.com/psychonautwiki/bifrost/internal/metrics"
	"github.com/psychonautwiki/bifrost/internal/plebiscite"
	"github.com/psychonautwiki/bifrost/internal/resolver"
	"github.com/psychonautwiki/bifrost/internal/upstream"
)

const Version = "1.0.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("bifrost exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()
	if flags.showVersion {
		fmt.Printf("bifrost version %s\n", Version)
		return nil
	}

	logger := setupLogger(flags.logLevel, flags.jsonLogs)
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if flags.port != 0 {
		cfg.Port = flags.port
	}

	upstreamBaseURL := normalizeUpstreamBaseURL(cfg.UpstreamBaseURL)
	cdnURL := normalizeCDNURL(cfg.CDNURL)

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	conn := upstream.New(upstreamBaseURL, cfg.CacheTTL, registry, m)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var pleb *plebiscite.Client
	if cfg.PlebisciteEnabled {
		logger.Info("connecting to plebiscite MongoDB", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		pleb, err = plebiscite.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase, cfg.MongoCollection, m)
		if err != nil {
			return fmt.Errorf("connect to plebiscite: %w", err)
		}
	}

	root := resolver.New(conn, pleb, m, cdnURL)
	schema, err := graphql.ParseSchema(resolver.Schema(cfg.PlebisciteEnabled), root)
	if err != nil {
		return fmt.Errorf("parse GraphQL schema: %w", err)
	}

	srv, err := httpserver.NewServer(cfg, schema, m, registry, logger, flags.debugRequests)
	if err != nil {
		return fmt.Errorf("build HTTP server: %w", err)
	}
	if err := srv.Setup(); err != nil {
		return fmt.Errorf("set up HTTP server: %w", err)
	}

	logger.Info("bifrost starting",
		"version", Version,
		"address", cfg.Addr(),
		"plebiscite_enabled", cfg.PlebisciteEnabled,
		"playground_enabled", cfg.EnablePlayground)

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx, ready) }()

	select {
	case <-ready:
	case err := <-errCh:
		return fmt.Errorf("start HTTP server: %w", err)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("run HTTP server: %w", err)
	}

	logger.Info("bifrost shut down cleanly")
	return nil
}

// normalizeUpstreamBaseURL turns a bare MediaWiki site root (bifrost's
// documented UPSTREAM_BASE_URL default) into the api.php endpoint
// internal/upstream.Connector actually calls, without double-appending
// when a caller already supplied the full endpoint.
func normalizeUpstreamBaseURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/w/api.php") {
		return base
	}
	return base + "/w/api.php"
}

// normalizeCDNURL ensures a trailing slash, since internal/derive's image
// URL derivation concatenates paths directly onto this base.
func normalizeCDNURL(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
