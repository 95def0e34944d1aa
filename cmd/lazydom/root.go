package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vcrobe/lazydom/appcomponents"
	"github.com/vcrobe/lazydom/console"
	"github.com/vcrobe/lazydom/internal/config"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/snapshot"
	"github.com/vcrobe/lazydom/snapshot/redisstore"
)

var rootCmd = &cobra.Command{
	Use:   "lazydom",
	Short: "lazydom renders components with lazily loaded event handlers",
	Long: `lazydom renders the demo components into an in-memory document,
dispatches events against them and serves them over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// env is what every command builds from the config file.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	resolver *lazyref.Resolver
	loader   *lazyref.ChunkLoader
}

func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, err := console.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := console.New(level)

	var data []byte
	if cfg.Manifest != "" {
		if data, err = os.ReadFile(cfg.Manifest); err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
	}
	manifest, err := appcomponents.Manifest(data)
	if err != nil {
		return nil, err
	}
	loader, err := appcomponents.NewChunkLoader(manifest)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		logger:   logger,
		resolver: lazyref.NewResolver(loader),
		loader:   loader,
	}, nil
}

// repository returns the Redis repository when one is configured, else an
// in-memory one.
func (e *env) repository() (snapshot.Repository, func() error) {
	if e.cfg.Redis.Addr == "" {
		return snapshot.NewMemoryRepository(), func() error { return nil }
	}
	store := redisstore.New(e.cfg.Redis.Addr, e.cfg.Redis.Password, e.cfg.Redis.DB,
		redisstore.WithPrefix(e.cfg.Redis.Prefix),
		redisstore.WithTTL(e.cfg.Redis.TTL),
	)
	return store, store.Close
}
