// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ItemStatus tracks one queue item through the conversion state machine.
// Transitions: pending → in-progress → succeeded | failed. Terminal
// states are not re-entered automatically; a failed item returns to
// pending only through an explicit retry pass. Per prd002-queue R2.1.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in-progress"
	ItemSucceeded  ItemStatus = "succeeded"
	ItemFailed     ItemStatus = "failed"
)

// Terminal reports whether the status is one of the two terminal states.
func (s ItemStatus) Terminal() bool {
	return s == ItemSucceeded || s == ItemFailed
}

// RunStatus reflects whether a batch pass is currently executing.
type RunStatus string

const (
	RunIdle    RunStatus = "idle"
	RunRunning RunStatus = "running"
)

// InputMode selects which input is authoritative for a session: pasted
// text or the file queue.
type InputMode string

const (
	ModeText  InputMode = "text"
	ModeFiles InputMode = "files"
)

// Payload is the source content of one conversion. Exactly one of Text
// and Data carries the content: textual sources travel as literal text,
// binary sources as raw bytes tagged with a content type.
type Payload struct {
	// Name is the source filename, or empty for pasted text.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Size is the source size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// ContentType is the declared content type (may be empty; the
	// extension then decides admission).
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Text holds decoded textual content.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Data holds raw binary content when the source is not textual.
	Data []byte `json:"data,omitempty" yaml:"data,omitempty"`
}

// Binary reports whether the payload travels as an encoded byte blob
// rather than literal text.
func (p Payload) Binary() bool {
	return len(p.Data) > 0
}

// QueueItem is one unit of batch work. The ID is assigned at enqueue
// time, stable for the item's lifetime, and never reused after removal.
// Invariant: Result is set only when Status is succeeded, FailureReason
// only when Status is failed, and never both. Per prd002-queue R1.2.
type QueueItem struct {
	ID            string     `json:"id" yaml:"id"`
	Payload       Payload    `json:"payload" yaml:"payload"`
	Status        ItemStatus `json:"status" yaml:"status"`
	Result        string     `json:"result,omitempty" yaml:"result,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}
