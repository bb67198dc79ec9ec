package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/internal/cache"
	"github.com/agentic-research/lexvault/internal/lookup"
	"github.com/agentic-research/lexvault/internal/server"
	"github.com/agentic-research/lexvault/internal/shard"
)

var (
	dataPath     string
	shardDir     string
	manifestName string
	cacheSize    int
	listenAddr   string
	verbose      bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&dataPath, "data", "d", envOr("LEXVAULT_DATA", ""), "Path to the monolithic dataset JSON")
	pf.StringVarP(&shardDir, "shards", "s", envOr("LEXVAULT_SHARDS", ""), "Directory holding per-bucket shard files")
	pf.StringVar(&manifestName, "manifest", envOr("LEXVAULT_MANIFEST", shard.ManifestName), "Manifest file name inside the shard directory")
	pf.IntVar(&cacheSize, "cache-size", envOrInt("LEXVAULT_CACHE_SIZE", cache.DefaultCapacity), "Resolved-entry cache capacity")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.Flags().StringVarP(&listenAddr, "listen", "l", envOr("LEXVAULT_LISTEN", ":8080"), "HTTP listen address")
}

var rootCmd = &cobra.Command{
	Use:   "lexvault",
	Short: "Lexvault: bounded-memory dictionary lookup service",
	Long: `Lexvault answers exact and prefix lookups against a large read-only
dictionary without parsing the whole dataset per request. With a shard
directory (see "lexvault split") buckets are loaded lazily on first use;
without one, the monolithic source is scanned incrementally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		eng, err := newEngine(log)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    listenAddr,
			Handler: server.New(eng, log).Handler(),
		}
		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.Info("serving", zap.String("addr", listenAddr), zap.Bool("sharded", eng.Sharded()))

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("listen on %s: %w", listenAddr, err)
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
		log.Info("stopped")
		return nil
	},
}

// newEngine builds a lookup engine from the resolved flag/env values.
func newEngine(log *zap.Logger) (*lookup.Engine, error) {
	cfg := lookup.Config{
		SourcePath: dataPath,
		ShardDir:   shardDir,
		CacheSize:  cacheSize,
		Logger:     log,
	}
	if shardDir != "" {
		cfg.ManifestPath = filepath.Join(shardDir, manifestName)
	}
	return lookup.New(cfg)
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
