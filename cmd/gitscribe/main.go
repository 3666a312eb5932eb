package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitscribe/internal/changelog"
	"gitscribe/internal/config"
	"gitscribe/internal/gitrepo"
	"gitscribe/internal/namespace"
	"gitscribe/internal/server"
	"gitscribe/internal/storage"
	"gitscribe/internal/summary"
	"gitscribe/internal/watcher"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gitscribe",
		Short: "AI-summarized change history and namespace diffs for a git repository",
	}
	configPath string
	repoDir    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gitscribe.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&repoDir, "repo", "r", "", "Repository root (defaults to the configured project root)")

	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
	diffCmd.Flags().StringSlice("kind", nil, "Limit to symbol kinds (function, class, method, table, column)")
	diffCmd.Flags().StringSlice("file", nil, "Limit to files (exact path, directory, or glob)")
	diffCmd.Flags().Bool("unchanged", false, "Also print unchanged symbols")
	diffCmd.Flags().Bool("json", false, "Print the full result as JSON")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if repoDir != "" {
		cfg.Project.Root = repoDir
	}
	return cfg
}

func openRepo(ctx context.Context, cfg *config.Config) *gitrepo.Repo {
	repo, err := gitrepo.Open(ctx, cfg.Project.Root)
	if err != nil {
		log.Fatalf("Failed to open repository: %v", err)
	}
	return repo
}

// newEngine wires the diff engine, attaching the symbol cache when one
// is configured.
func newEngine(cfg *config.Config, repo *gitrepo.Repo, logger *slog.Logger) *namespace.Engine {
	opts := []namespace.EngineOption{namespace.WithLogger(logger)}
	if cfg.Cache.Path != "" {
		cache, err := storage.OpenSymbolCache(cfg.Cache.Path)
		if err != nil {
			log.Fatalf("Failed to open symbol cache: %v", err)
		}
		opts = append(opts, namespace.WithCache(cache))
	}
	return namespace.NewEngine(repo, opts...)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for uncommitted changes and append summarized changelog entries",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		repo := openRepo(ctx, cfg)
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		summarizer, err := summary.New(ctx, summary.Options{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create summarizer: %v", err)
		}

		w := watcher.New(
			repo,
			summarizer,
			changelog.NewWriter(cfg.Watch.ChangelogDir),
			time.Duration(cfg.Watch.IntervalSeconds)*time.Second,
			logger,
		)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Watcher failed: %v", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		ctx := context.Background()
		repo := openRepo(ctx, cfg)
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		srv := server.New(server.Config{
			Port:         cfg.Server.Port,
			Repo:         repo,
			Engine:       newEngine(cfg, repo, logger),
			ChangelogDir: cfg.Watch.ChangelogDir,
			Logger:       logger,
		})
		if err := srv.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [refA] [refB]",
	Short: "Compare the namespace between two refs (defaults: WORKTREE vs HEAD)",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()
		repo := openRepo(ctx, cfg)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

		refA, refB := gitrepo.Worktree, "HEAD"
		if len(args) > 0 {
			refA = args[0]
		}
		if len(args) > 1 {
			refB = args[1]
		}

		var opts namespace.Options
		kinds, _ := cmd.Flags().GetStringSlice("kind")
		for _, k := range kinds {
			kind, ok := namespace.ParseKind(k)
			if !ok {
				log.Fatalf("Unknown symbol kind: %s", k)
			}
			opts.Kinds = append(opts.Kinds, kind)
		}
		opts.Files, _ = cmd.Flags().GetStringSlice("file")

		result, err := newEngine(cfg, repo, logger).Diff(ctx, refA, refB, opts)
		if err != nil {
			log.Fatalf("Diff failed: %v", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				log.Fatalf("Encode result: %v", err)
			}
			return
		}
		withUnchanged, _ := cmd.Flags().GetBool("unchanged")
		printResult(result, withUnchanged)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()
		repo := openRepo(ctx, cfg)
		status, err := repo.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to get status: %v", err)
		}
		fmt.Println(status)
	},
}

func printResult(result *namespace.Result, withUnchanged bool) {
	fmt.Printf("Comparing %s -> %s\n", result.RefA, result.RefB)
	shown := 0
	for _, e := range result.Entries {
		if e.Status == namespace.StatusUnchanged && !withUnchanged {
			continue
		}
		shown++
		switch e.Status {
		case namespace.StatusAdded:
			fmt.Printf("  + %-8s %s\n", e.Kind, symbolLabel(e.After))
		case namespace.StatusRemoved:
			fmt.Printf("  - %-8s %s\n", e.Kind, symbolLabel(e.Before))
		case namespace.StatusRenamed:
			fmt.Printf("  ~ %-8s %s -> %s (confidence %.1f)\n",
				e.Kind, symbolLabel(e.Before), symbolLabel(e.After), e.Confidence)
		case namespace.StatusUnchanged:
			fmt.Printf("  = %-8s %s\n", e.Kind, symbolLabel(e.After))
		}
	}
	if shown == 0 {
		fmt.Println("  no namespace changes")
	}
	for _, skipped := range result.Skipped {
		fmt.Printf("  ! skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
}

func symbolLabel(s *namespace.Symbol) string {
	if s == nil {
		return "?"
	}
	name := s.Name
	if s.Scope != "" {
		name = s.Scope + "." + s.Name
	}
	return fmt.Sprintf("%s (%s)", name, s.File)
}
