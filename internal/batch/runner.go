// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives queued conversions through the AI backend, one
// call in flight at a time, recording per-item outcomes without letting
// a single failure abort the pass.
// Implements: prd002-queue R2, R5; docs/ARCHITECTURE § Batch Runner.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/format-engine/internal/convert"
	"github.com/pdiddy/format-engine/internal/payload"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

// ErrNoInput indicates a run was requested with nothing to convert:
// blank text in single-text mode, or an empty queue in file mode. The
// run performs no backend calls in that case (R2.4).
var ErrNoInput = errors.New("nothing to convert")

// Summary holds counts from one batch pass.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Total returns the number of items considered by the pass.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// HasFailures reports whether any item failed during the pass.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Runner sequences conversion calls against a backend. It owns no state
// of its own; per-item status lives in the session it is handed.
type Runner struct {
	backend convert.Backend
}

// New creates a runner bound to the given backend.
func New(backend convert.Backend) *Runner {
	return &Runner{backend: backend}
}

// Run executes one batch pass over the session. In file mode it walks
// the queue in insertion order and converts every pending item; items
// already succeeded are never re-sent, and failed items are re-armed
// only when retry is true (R2.2, R2.3). In single-text mode the same
// contract applies to one conceptual item. Per-item progress lines are
// written to w. The returned error covers pre-run validation only;
// item-level failures are recorded on the items themselves.
func (r *Runner) Run(ctx context.Context, s *session.Session, retry bool, w io.Writer) (Summary, error) {
	if s.Mode() == types.ModeText {
		return r.runText(ctx, s, w)
	}
	return r.runQueue(ctx, s, retry, w)
}

func (r *Runner) runQueue(ctx context.Context, s *session.Session, retry bool, w io.Writer) (Summary, error) {
	if retry {
		if n := s.RearmFailed(); n > 0 {
			fmt.Fprintf(w, "re-armed %d failed item(s)\n", n)
		}
	}

	if len(s.Items()) == 0 {
		s.SetValidationError("no files queued")
		return Summary{}, fmt.Errorf("%w: queue is empty", ErrNoInput)
	}

	s.SetRunStatus(types.RunRunning)
	defer s.SetRunStatus(types.RunIdle)

	var summary Summary
	for _, item := range s.Items() {
		if item.Status != types.ItemPending {
			fmt.Fprintf(w, "skipped: %s (%s)\n", itemName(item), item.Status)
			summary.Skipped++
			continue
		}

		// The in-progress item becomes the active one so observers can
		// follow the pass (R2.5). Both calls only fail for unknown IDs,
		// and item came from the queue snapshot above.
		_ = s.MarkInProgress(item.ID)
		_ = s.SelectActive(item.ID)
		fmt.Fprintf(w, "converting %s\n", itemName(item))

		result, err := r.backend.Convert(ctx, convert.Request{
			Payload:      item.Payload,
			Target:       s.Target(),
			Instructions: s.Instructions(),
		})
		if err != nil {
			_ = s.MarkFailed(item.ID, err.Error())
			fmt.Fprintf(w, "failed:  %s (%v)\n", itemName(item), err)
			summary.Failed++
			continue
		}

		_ = s.MarkSucceeded(item.ID, result)
		fmt.Fprintf(w, "converted: %s\n", itemName(item))
		summary.Succeeded++
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed, %d skipped (total: %d)\n",
		summary.Succeeded, summary.Failed, summary.Skipped, summary.Total())
	return summary, nil
}

func (r *Runner) runText(ctx context.Context, s *session.Session, w io.Writer) (Summary, error) {
	if strings.TrimSpace(s.InputText()) == "" {
		s.SetValidationError("no text to convert")
		return Summary{}, fmt.Errorf("%w: input text is empty", ErrNoInput)
	}

	s.SetRunStatus(types.RunRunning)
	defer s.SetRunStatus(types.RunIdle)

	s.MarkTextInProgress()

	result, err := r.backend.Convert(ctx, convert.Request{
		Payload:      payload.FromText(s.InputText()),
		Target:       s.Target(),
		Instructions: s.Instructions(),
	})
	if err != nil {
		s.MarkTextFailed(err.Error())
		fmt.Fprintf(w, "failed: %v\n", err)
		return Summary{Failed: 1}, nil
	}

	s.MarkTextSucceeded(result)
	fmt.Fprintln(w, "converted")
	return Summary{Succeeded: 1}, nil
}

// itemName returns a display name for progress lines.
func itemName(item types.QueueItem) string {
	if item.Payload.Name != "" {
		return item.Payload.Name
	}
	return item.ID[:8]
}
