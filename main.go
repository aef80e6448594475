package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"library-backend/internal/library_mgmt/books"
	"library-backend/internal/platform/db"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "library-backend",
	Short:         "Library backend: books, members and loans over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := db.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		slog.SetDefault(newLogger(cfg.Log, os.Stderr))
		return serve(cmd.Context(), cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := db.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		conn, err := db.Connect(cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(cmd.Context(), conn, cfg.DB.Driver); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DB.Driver)
		return nil
	},
}

var flagEncoding string

var importCmd = &cobra.Command{
	Use:   "import-books <file.csv>",
	Short: "Register books from a CSV file",
	Long: `Register one book per CSV row.

Header columns: title, authors, category, isbn, total_copies and optionally
available_copies, published_date (YYYY-MM-DD). Authors are separated by ';'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := db.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		slog.SetDefault(newLogger(cfg.Log, os.Stderr))

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		conn, err := db.Connect(cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()

		res, err := books.NewService(conn).ImportCSV(cmd.Context(), f, flagEncoding)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range res.Results {
			if !r.Ok {
				fmt.Fprintf(out, "row %d: %s\n", r.Row, *r.Error)
			}
		}
		fmt.Fprintf(out, "imported %d of %d rows (%d failed)\n", res.OkCount, res.Total, res.NgCount)
		if res.NgCount > 0 {
			return fmt.Errorf("%d rows failed", res.NgCount)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", db.DefaultConfigPath, "config file path")
	importCmd.Flags().StringVar(&flagEncoding, "encoding", "utf-8", "file encoding: utf-8 or shift_jis")

	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
