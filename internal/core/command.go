package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/google/uuid"
)

// NoDataNotice is posted when the sheet has no rows.
const NoDataNotice = "📭 No data available: the portfolio sheet has no rows."

// CommandHandler answers the on-demand report command. Unlike the
// scheduler it tells the requester when something went wrong.
type CommandHandler struct {
	runner Runner

	wg     sync.WaitGroup
	active atomic.Int32
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(runner Runner) *CommandHandler {
	return &CommandHandler{runner: runner}
}

// Active returns the number of commands being answered.
func (h *CommandHandler) Active() int {
	return int(h.active.Load())
}

// Drain blocks until every running command has returned or ctx ends.
func (h *CommandHandler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle runs the pipeline for dest and posts a notice for every outcome
// other than success. The returned Result reflects the pipeline, not the
// notice.
func (h *CommandHandler) Handle(ctx context.Context, dest Destination) (res Result) {
	h.wg.Add(1)
	h.active.Add(1)
	defer func() {
		h.active.Add(-1)
		h.wg.Done()
	}()

	ctx = logging.WithCycleID(ctx, uuid.NewString())
	logger := logging.FromContext(ctx).With("requester", RequesterFromContext(ctx))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("report command panicked", "panic", r, "stack", string(debug.Stack()))
			res = Result{Status: StatusFailed, Err: fmt.Errorf("panic: %v", r)}
			h.notify(ctx, dest, FormatNotice(MapError(res.Err)))
		}
	}()

	res = h.runner.Run(ctx, dest)

	switch res.Status {
	case StatusOK:
		logger.Info("report command answered",
			"destination", dest.String(),
			"pages", res.Pages,
			"records", res.Records,
		)
	case StatusNoData:
		h.notify(ctx, dest, NoDataNotice)
	default:
		logger.Warn("report command failed",
			"status", res.Status,
			"destination", dest.String(),
			"error", res.Err,
		)
		h.notify(ctx, dest, FormatNotice(MapError(res.Err)))
	}
	return res
}

func (h *CommandHandler) notify(ctx context.Context, dest Destination, text string) {
	if err := dest.Notify(ctx, text); err != nil {
		logging.FromContext(ctx).Error("failed to post notice", "destination", dest.String(), "error", err)
	}
}
