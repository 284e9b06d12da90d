// Command depotbot posts a portfolio summary from a published spreadsheet
// to a Discord channel on a fixed interval and on request.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/JonMunkholm/depotbot/internal/config"
	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/JonMunkholm/depotbot/internal/sheet"
	"github.com/JonMunkholm/depotbot/internal/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "depotbot",
	Short: "Post a portfolio spreadsheet to Discord",
	Long: `depotbot fetches a spreadsheet published as CSV, totals the positions
and posts the result to a Discord channel every SCHEDULE_INTERVAL.
Users can request the report at any time with the chat command (default !depot).

Running without a subcommand is the same as "depotbot run".`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Overload so a local .env wins over stale shell exports.
		if err := godotenv.Overload(envFiles...); err != nil {
			slog.Debug("no .env file loaded, using environment variables", "error", err)
		} else {
			slog.Debug("loaded .env file (overwriting existing env vars)")
		}
	},
	RunE: runBot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "depotbot "+version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	rootCmd.AddCommand(runCmd, previewCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// configError logs a configuration failure the way an operator needs
// to see it: every missing variable by name.
func configError(err error) error {
	if missing := config.MissingVars(err); len(missing) > 0 {
		for _, name := range missing {
			slog.Error("required environment variable not set", "name", name)
		}
	}
	slog.Error("failed to load configuration", "error", err)
	return err
}

// newService wires the sheet client and the portfolio stages.
func newService(cfg *config.Config, hc *http.Client) (*core.Service, error) {
	client := sheet.NewClient(
		sheet.WithHTTPClient(hc),
		sheet.WithLogger(slog.Default()),
		sheet.WithMaxBytes(cfg.Sheet.MaxBytes),
		sheet.WithUserAgent(version.UserAgent()),
	)
	return newServiceWithSource(cfg, client)
}

func newServiceWithSource(cfg *config.Config, src core.Source) (*core.Service, error) {
	policy, err := portfolio.ParseMissingPolicy(cfg.Sheet.MissingFields)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(cfg.Report.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale: %w", err)
	}

	parser := portfolio.NewParser(portfolio.ColumnMap{
		Name:   cfg.Sheet.NameColumn,
		Value:  cfg.Sheet.ValueColumn,
		Change: cfg.Sheet.ChangeColumn,
	}, policy)
	renderer := portfolio.NewRenderer(portfolio.NewFormatter(tag, cfg.Report.Currency))

	return core.NewService(src, parser, renderer, core.ReportConfig{
		URL:   cfg.Sheet.URL,
		Title: cfg.Report.Title,
		Color: cfg.Report.Color,
	}), nil
}
