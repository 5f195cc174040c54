package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/scheduler"
	"github.com/MrSnakeDoc/versefinder/internal/search"
	"github.com/MrSnakeDoc/versefinder/internal/store/sqlite"
	"github.com/MrSnakeDoc/versefinder/internal/utils"
	"github.com/MrSnakeDoc/versefinder/internal/version"
)

type globalFlags struct {
	dbPath       string
	logLevel     string
	nearDistance int
	timeout      time.Duration
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "versectl",
		Short: "Operate a versefinder verse database",
		Long: `versectl works directly on the SQLite verse database used by versefinder.

It can import a YAML corpus, run keyword searches with the same tier
cascade as the API, and resolve scripture references.

All results are printed as JSON on stdout.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.dbPath, "db", os.Getenv("VERSE_DB_PATH"), "SQLite database path (default $VERSE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().IntVar(&g.nearDistance, "near-distance", sqlite.DefaultNearDistance, "NEAR proximity window")
	cmd.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "Overall command timeout")

	cmd.AddCommand(
		importCmd(g),
		searchCmd(g),
		lookupCmd(g),
		versionCmd(),
	)
	return cmd
}

func importCmd(g *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a YAML corpus into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store *sqlite.Store, log logger.Logger) error {
				reloader := scheduler.NewCorpusReloader(file, store, nil, log, time.Hour, false, nil)
				err := reloader.Reload(ctx)
				if encErr := writeJSON(cmd.OutOrStdout(), reloader.Status()); encErr != nil {
					return encErr
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Corpus YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func searchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search KEYWORD...",
		Short: "Run a keyword search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store *sqlite.Store, log logger.Logger) error {
				engine, err := search.NewEngine(store, search.WithLogger(log))
				if err != nil {
					return err
				}
				result, err := engine.Search(ctx, args)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func lookupCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup REFERENCE",
		Short: `Resolve a reference such as "John 3:16-18"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store *sqlite.Store, log logger.Logger) error {
				resolver, err := search.NewResolver(store, search.WithPoolSize(1), search.WithResolverLogger(log))
				if err != nil {
					return err
				}
				defer resolver.Release()

				verses, err := resolver.ExpandAndLookup(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), verses)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "versectl %s (commit: %s, built: %s, %s)\n",
				version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}
}

// withStore opens the database named by --db and runs fn against it.
func withStore(cmd *cobra.Command, g *globalFlags, fn func(context.Context, *sqlite.Store, logger.Logger) error) error {
	if g.dbPath == "" {
		return errors.New("--db is required (or set VERSE_DB_PATH)")
	}

	log := logger.New(g.logLevel, true)
	defer func() { _ = log.Sync() }()

	store, err := sqlite.Open(g.dbPath, sqlite.WithNearDistance(g.nearDistance))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer utils.MustClose(store, log, "verse store")

	ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
	defer cancel()

	return fn(ctx, store, log)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
