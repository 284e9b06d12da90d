package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"go.uber.org/goleak"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const scenarioCSV = "Aktie,Wert,Veränderung\nAAA,100,5\nBBB,200,-3\n"

var fixedNow = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

// fakeDestination records what the pipeline posts.
type fakeDestination struct {
	mu       sync.Mutex
	pages    []portfolio.Page
	notices  []string
	failPage int // 1-based page index that fails, 0 for none
	panicky  bool
}

func (d *fakeDestination) Send(_ context.Context, page portfolio.Page) error {
	if d.panicky {
		panic("send exploded")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failPage == page.Index {
		return errors.New("403 Forbidden")
	}
	d.pages = append(d.pages, page)
	return nil
}

func (d *fakeDestination) Notify(_ context.Context, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, text)
	return nil
}

func (d *fakeDestination) String() string { return "channel test" }

func (d *fakeDestination) Pages() []portfolio.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]portfolio.Page(nil), d.pages...)
}

func (d *fakeDestination) Notices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.notices...)
}

// fakeResolver hands out one destination or fails.
type fakeResolver struct {
	dest *fakeDestination
	err  error
}

func (r *fakeResolver) Resolve(context.Context) (Destination, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.dest, nil
}

// staticSource serves the same text on every fetch.
func staticSource(text string) Source {
	return SourceFunc(func(context.Context, string) (string, error) {
		return text, nil
	})
}

func newTestService(src Source) *Service {
	renderer := portfolio.NewRenderer(
		portfolio.NewFormatter(language.German, "€"),
		portfolio.WithClock(func() time.Time { return fixedNow }),
	)
	return NewService(src,
		portfolio.NewParser(portfolio.DefaultColumns(), portfolio.MissingZero),
		renderer,
		ReportConfig{URL: "https://docs.example.com/export?format=csv", Title: "Depot", Color: 0x2ECC71},
	)
}

// rowsCSV builds a sheet with n rows valued 1..n.
func rowsCSV(n int) string {
	var b strings.Builder
	b.WriteString("Aktie,Wert,Veränderung\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "S%02d,%d,1\n", i, i)
	}
	return b.String()
}
