// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the conversion session aggregate: input mode, the
// item queue, the active selection, the chosen target, and run status.
// All mutation goes through named operations so the batch runner and the
// CLI never touch fields directly.
// Implements: prd002-queue R1, R3, R4; docs/ARCHITECTURE § Session.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/format-engine/internal/payload"
	"github.com/pdiddy/format-engine/pkg/types"
)

// ErrNotFound indicates an operation referenced an item identity that is
// not currently in the queue.
var ErrNotFound = errors.New("queue item not found")

// Session is the aggregate for one conversion session. It is created at
// session start, mutated in place by user operations and by the batch
// runner, and never persisted: its lifetime is the process.
type Session struct {
	mode         types.InputMode
	inputText    string
	queue        []types.QueueItem
	activeID     string
	target       types.ConversionTarget
	instructions string
	runStatus    types.RunStatus
	lastError    string

	// Single-text mode outcome. Mirrors the per-item invariant: result
	// only on success, failure reason only on failure.
	textStatus  types.ItemStatus
	textResult  string
	textFailure string
}

// New creates an idle session in file mode with an empty queue.
func New(target types.ConversionTarget) *Session {
	return &Session{
		mode:       types.ModeFiles,
		target:     target,
		runStatus:  types.RunIdle,
		textStatus: types.ItemPending,
	}
}

// Mode returns the current input mode.
func (s *Session) Mode() types.InputMode { return s.mode }

// InputText returns the pasted text for single-text mode.
func (s *Session) InputText() string { return s.inputText }

// Target returns the selected conversion target.
func (s *Session) Target() types.ConversionTarget { return s.target }

// Instructions returns the free-text modifier applied to every call.
func (s *Session) Instructions() string { return s.instructions }

// RunStatus reports whether a batch pass is currently executing.
func (s *Session) RunStatus() types.RunStatus { return s.runStatus }

// LastError returns the pending validation error indicator, or empty.
func (s *Session) LastError() string { return s.lastError }

// ActiveID returns the identity of the active item, or empty when unset.
func (s *Session) ActiveID() string { return s.activeID }

// Items returns a snapshot copy of the queue in insertion order.
func (s *Session) Items() []types.QueueItem {
	out := make([]types.QueueItem, len(s.queue))
	copy(out, s.queue)
	return out
}

// Item returns a copy of the item with the given identity.
func (s *Session) Item(id string) (types.QueueItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.queue[i], true
	}
	return types.QueueItem{}, false
}

// Active returns a copy of the currently active item.
func (s *Session) Active() (types.QueueItem, bool) {
	if s.activeID == "" {
		return types.QueueItem{}, false
	}
	return s.Item(s.activeID)
}

// Enqueue admits candidates and appends the accepted ones to the queue in
// the order given. Each candidate is validated independently against the
// size ceiling and the type allow-list; a rejected candidate contributes
// to the aggregate error but never blocks its valid siblings (R3.4). When
// the active identity is unset and at least one candidate was accepted,
// the first accepted item becomes active. Returns the identities assigned
// to accepted items.
func (s *Session) Enqueue(candidates ...types.Payload) ([]string, error) {
	var accepted []string
	var rejections []string

	for _, p := range candidates {
		if err := payload.Admit(p.Name, p.Size, p.ContentType); err != nil {
			rejections = append(rejections, err.Error())
			continue
		}
		item := types.QueueItem{
			ID:      uuid.NewString(),
			Payload: p,
			Status:  types.ItemPending,
		}
		s.queue = append(s.queue, item)
		accepted = append(accepted, item.ID)
	}

	if s.activeID == "" && len(accepted) > 0 {
		s.activeID = accepted[0]
	}

	if len(rejections) > 0 {
		return accepted, fmt.Errorf("rejected %d file(s): %s",
			len(rejections), strings.Join(rejections, "; "))
	}
	return accepted, nil
}

// Remove deletes the item with the given identity. Removing the active
// item reassigns the active identity to the new first item, or clears it
// when the queue becomes empty (R4.2).
func (s *Session) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.queue = append(s.queue[:i], s.queue[i+1:]...)

	if s.activeID == id {
		if len(s.queue) > 0 {
			s.activeID = s.queue[0].ID
		} else {
			s.activeID = ""
		}
	}
	return nil
}

// SelectActive sets the active identity. Unknown identities return
// ErrNotFound; callers may treat that as a no-op.
func (s *Session) SelectActive(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// SetTarget replaces the conversion target. Items already queued or
// completed are unaffected.
func (s *Session) SetTarget(target types.ConversionTarget) {
	s.target = target
	s.lastError = ""
}

// SetInstructions replaces the free-text modifier.
func (s *Session) SetInstructions(text string) {
	s.instructions = text
	s.lastError = ""
}

// SetInputText replaces the pasted text and switches to single-text mode.
func (s *Session) SetInputText(text string) {
	s.inputText = text
	s.mode = types.ModeText
	s.lastError = ""
}

// SetMode switches the authoritative input between text and files.
func (s *Session) SetMode(mode types.InputMode) {
	s.mode = mode
	s.lastError = ""
}

// SetValidationError records a pre-run validation failure for display.
func (s *Session) SetValidationError(msg string) { s.lastError = msg }

// SetRunStatus is used by the batch runner to bracket a pass.
func (s *Session) SetRunStatus(status types.RunStatus) { s.runStatus = status }

// MarkInProgress transitions an item to in-progress and clears any stale
// terminal fields from a previous pass.
func (s *Session) MarkInProgress(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.queue[i].Status = types.ItemInProgress
	s.queue[i].Result = ""
	s.queue[i].FailureReason = ""
	return nil
}

// MarkSucceeded stores the converted text and transitions to succeeded.
func (s *Session) MarkSucceeded(id, result string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.queue[i].Status = types.ItemSucceeded
	s.queue[i].Result = result
	s.queue[i].FailureReason = ""
	return nil
}

// MarkFailed stores the failure message and transitions to failed.
func (s *Session) MarkFailed(id, reason string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.queue[i].Status = types.ItemFailed
	s.queue[i].FailureReason = reason
	s.queue[i].Result = ""
	return nil
}

// TextStatus returns the single-text mode status (pending until a run).
func (s *Session) TextStatus() types.ItemStatus { return s.textStatus }

// TextResult returns the converted text for single-text mode.
func (s *Session) TextResult() string { return s.textResult }

// TextFailure returns the failure message for single-text mode.
func (s *Session) TextFailure() string { return s.textFailure }

// MarkTextInProgress transitions the single-text conversion to in-progress.
func (s *Session) MarkTextInProgress() {
	s.textStatus = types.ItemInProgress
	s.textResult = ""
	s.textFailure = ""
}

// MarkTextSucceeded stores the single-text result.
func (s *Session) MarkTextSucceeded(result string) {
	s.textStatus = types.ItemSucceeded
	s.textResult = result
	s.textFailure = ""
}

// MarkTextFailed stores the single-text failure message.
func (s *Session) MarkTextFailed(reason string) {
	s.textStatus = types.ItemFailed
	s.textFailure = reason
	s.textResult = ""
}

// RearmFailed resets every failed item to pending for a retry pass and
// returns how many items were re-armed (R2.3).
func (s *Session) RearmFailed() int {
	n := 0
	for i := range s.queue {
		if s.queue[i].Status == types.ItemFailed {
			s.queue[i].Status = types.ItemPending
			s.queue[i].FailureReason = ""
			n++
		}
	}
	return n
}

func (s *Session) index(id string) int {
	for i := range s.queue {
		if s.queue[i].ID == id {
			return i
		}
	}
	return -1
}
