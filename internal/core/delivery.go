package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/JonMunkholm/depotbot/internal/sheet"
	"github.com/shopspring/decimal"
)

// ErrChannelUnresolved means the report destination could not be found.
var ErrChannelUnresolved = errors.New("destination channel unresolved")

// Destination receives report pages and notices.
type Destination interface {
	// Send posts one page.
	Send(ctx context.Context, page portfolio.Page) error
	// Notify posts a plain text notice.
	Notify(ctx context.Context, text string) error
	// String identifies the destination in logs.
	String() string
}

// Resolver finds the destination for scheduled reports. Implementations
// return an error wrapping ErrChannelUnresolved when it does not exist.
type Resolver interface {
	Resolve(ctx context.Context) (Destination, error)
}

// DeliveryError describes a page that could not be posted.
type DeliveryError struct {
	Destination string
	Page        int
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver page %d to %s: %v", e.Page, e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Deliver sends pages in order and stops at the first failure. It returns
// how many pages were sent.
func Deliver(ctx context.Context, dest Destination, pages []portfolio.Page) (int, error) {
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return i, &DeliveryError{Destination: dest.String(), Page: page.Index, Err: err}
		}
		if err := dest.Send(ctx, page); err != nil {
			return i, &DeliveryError{Destination: dest.String(), Page: page.Index, Err: err}
		}
	}
	return len(pages), nil
}

// Status is the outcome of one pipeline run.
type Status string

const (
	StatusOK             Status = "ok"
	StatusNoData         Status = "no-data"
	StatusFetchFailed    Status = "fetch-failed"
	StatusDeliveryFailed Status = "delivery-failed"
	StatusFailed         Status = "failed"
)

// Result is what a pipeline run reports back to its trigger.
type Result struct {
	Status   Status
	Records  int
	Pages    int // pages delivered
	Total    decimal.Decimal
	Err      error
	Duration time.Duration
}

// OK reports whether every page was delivered.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

func statusFor(err error) Status {
	var fe *sheet.FetchError
	var de *DeliveryError
	switch {
	case errors.As(err, &fe):
		return StatusFetchFailed
	case errors.As(err, &de), errors.Is(err, ErrChannelUnresolved):
		return StatusDeliveryFailed
	default:
		return StatusFailed
	}
}
