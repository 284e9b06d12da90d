package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/shopspring/decimal"
)

// Source fetches the raw CSV text of a sheet.
type Source interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SourceFunc is a function adapter for Source.
type SourceFunc func(ctx context.Context, url string) (string, error)

func (f SourceFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// ReportConfig describes where the report comes from and how it looks.
type ReportConfig struct {
	URL   string
	Title string
	Color int
}

// Report is the output of one fetch, parse, summarize and render pass.
// It belongs to a single cycle and is never shared.
type Report struct {
	Records []portfolio.Record
	Total   decimal.Decimal
	Pages   []portfolio.Page
}

// Service runs the report pipeline. It holds no per-cycle state, so
// scheduled cycles and commands may call it concurrently.
type Service struct {
	source   Source
	parser   *portfolio.Parser
	renderer *portfolio.Renderer
	cfg      ReportConfig
}

// NewService creates a Service.
func NewService(source Source, parser *portfolio.Parser, renderer *portfolio.Renderer, cfg ReportConfig) *Service {
	return &Service{
		source:   source,
		parser:   parser,
		renderer: renderer,
		cfg:      cfg,
	}
}

// Build fetches the sheet and renders its pages. Errors from the source are
// returned unchanged so callers can inspect *sheet.FetchError.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	text, err := s.source.Fetch(ctx, s.cfg.URL)
	if err != nil {
		return nil, err
	}

	records, err := s.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}

	total := portfolio.Summarize(records)
	return &Report{
		Records: records,
		Total:   total,
		Pages:   s.renderer.Render(records, total, s.cfg.Title, s.cfg.Color),
	}, nil
}

// Run builds the report and delivers every page to dest in order. It never
// notifies dest about failures; that is the caller's decision.
func (s *Service) Run(ctx context.Context, dest Destination) Result {
	start := time.Now()
	res := s.run(ctx, dest)
	res.Duration = time.Since(start)

	logger := logging.FromContext(ctx)
	if res.Err != nil {
		logger.Debug("report pipeline finished", "status", res.Status, "error", res.Err, "duration_ms", res.Duration.Milliseconds())
	} else {
		logger.Debug("report pipeline finished", "status", res.Status, "pages", res.Pages, "duration_ms", res.Duration.Milliseconds())
	}
	return res
}

func (s *Service) run(ctx context.Context, dest Destination) Result {
	report, err := s.Build(ctx)
	if err != nil {
		return Result{Status: statusFor(err), Err: err}
	}

	res := Result{Records: len(report.Records), Total: report.Total}
	if len(report.Pages) == 0 {
		res.Status = StatusNoData
		return res
	}

	sent, err := Deliver(ctx, dest, report.Pages)
	res.Pages = sent
	if err != nil {
		res.Status = StatusDeliveryFailed
		res.Err = err
		return res
	}

	res.Status = StatusOK
	return res
}
