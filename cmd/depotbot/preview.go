package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/JonMunkholm/depotbot/internal/config"
	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/JonMunkholm/depotbot/internal/sheet"
	"github.com/spf13/cobra"
)

var previewFile string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the report to the terminal without posting it",
	Long: `preview builds the report exactly as the bot would and prints each page
as text. With --file it reads a local CSV export instead of SHEET_CSV_URL,
and no Discord settings are needed either way.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "read the sheet from a local CSV file")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPreview(previewFile == "")
	if err != nil {
		return configError(err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var svc *core.Service
	if previewFile != "" {
		svc, err = newServiceWithSource(cfg, fileSource(previewFile))
	} else {
		hc := &http.Client{Timeout: cfg.Sheet.Timeout}
		defer hc.CloseIdleConnections()
		svc, err = newService(cfg, hc)
	}
	if err != nil {
		return err
	}

	report, err := svc.Build(cmd.Context())
	if err != nil {
		slog.Error("failed to build report", "error", err, "code", core.MapError(err).Code)
		return err
	}

	return printReport(cmd.OutOrStdout(), report)
}

// fileSource reads a local export through the same decoding as a fetch.
func fileSource(path string) core.Source {
	return core.SourceFunc(func(context.Context, string) (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open sheet file: %w", err)
		}
		defer f.Close()

		b, err := io.ReadAll(sheet.NewReader(f))
		if err != nil {
			return "", fmt.Errorf("read sheet file: %w", err)
		}
		return string(b), nil
	})
}

func printReport(w io.Writer, report *core.Report) error {
	if len(report.Pages) == 0 {
		_, err := fmt.Fprintln(w, core.NoDataNotice)
		return err
	}
	for i, page := range report.Pages {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, page.Text()); err != nil {
			return err
		}
	}
	return nil
}
