// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/format-engine/pkg/types"
)

func textPayload(name, content string) types.Payload {
	return types.Payload{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Text:        content,
	}
}

func TestEnqueue_OrderAndActive(t *testing.T) {
	s := New(types.TargetJSON)

	ids, err := s.Enqueue(
		textPayload("a.txt", "aaa"),
		textPayload("b.txt", "bbb"),
		textPayload("c.txt", "ccc"),
	)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("accepted = %d, want 3", len(ids))
	}

	items := s.Items()
	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if items[i].Payload.Name != want {
			t.Errorf("item %d = %q, want %q", i, items[i].Payload.Name, want)
		}
		if items[i].Status != types.ItemPending {
			t.Errorf("item %d status = %q, want pending", i, items[i].Status)
		}
	}

	if s.ActiveID() != ids[0] {
		t.Errorf("active = %q, want first accepted %q", s.ActiveID(), ids[0])
	}
}

func TestEnqueue_RejectionsDoNotBlockSiblings(t *testing.T) {
	s := New(types.TargetCSV)

	oversized := types.Payload{Name: "big.pdf", Size: 6 * 1024 * 1024, ContentType: "application/pdf"}
	badType := types.Payload{Name: "tool.exe", Size: 10, ContentType: "application/x-msdownload"}

	ids, err := s.Enqueue(oversized, textPayload("ok.txt", "fine"), badType)
	if err == nil {
		t.Fatal("expected aggregate rejection error")
	}
	if !strings.Contains(err.Error(), "rejected 2 file(s)") {
		t.Errorf("aggregate message = %q", err.Error())
	}
	if !strings.Contains(err.Error(), "big.pdf") || !strings.Contains(err.Error(), "tool.exe") {
		t.Errorf("aggregate message should name both rejections: %q", err.Error())
	}

	if len(ids) != 1 {
		t.Fatalf("accepted = %d, want 1", len(ids))
	}
	items := s.Items()
	if len(items) != 1 || items[0].Payload.Name != "ok.txt" {
		t.Fatalf("queue should hold only the admitted file, got %+v", items)
	}
}

func TestEnqueue_OversizedRejectedRegardlessOfType(t *testing.T) {
	s := New(types.TargetJSON)

	// Declared type is on the allow-list; size must still win.
	_, err := s.Enqueue(types.Payload{Name: "big.png", Size: 6 * 1024 * 1024, ContentType: "image/png"})
	if err == nil {
		t.Fatal("expected size rejection")
	}
	if !strings.Contains(err.Error(), "size limit") {
		t.Errorf("rejection message = %q, want size violation", err.Error())
	}
	if len(s.Items()) != 0 {
		t.Error("oversized file must not be queued")
	}
}

func TestRemove_ActiveReassignment(t *testing.T) {
	s := New(types.TargetJSON)
	ids, _ := s.Enqueue(
		textPayload("a.txt", "a"),
		textPayload("b.txt", "b"),
	)

	// Removing the active item reassigns to the new first item.
	if err := s.Remove(ids[0]); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != ids[1] {
		t.Errorf("active = %q, want %q", s.ActiveID(), ids[1])
	}

	// Removing the last item clears the active identity.
	if err := s.Remove(ids[1]); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != "" {
		t.Errorf("active = %q, want empty", s.ActiveID())
	}

	// Absent identity reports not-found.
	if err := s.Remove(ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemove_NonActiveKeepsSelection(t *testing.T) {
	s := New(types.TargetJSON)
	ids, _ := s.Enqueue(
		textPayload("a.txt", "a"),
		textPayload("b.txt", "b"),
		textPayload("c.txt", "c"),
	)

	if err := s.SelectActive(ids[2]); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ids[0]); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != ids[2] {
		t.Errorf("active = %q, want unchanged %q", s.ActiveID(), ids[2])
	}
}

func TestSelectActive_NotFound(t *testing.T) {
	s := New(types.TargetJSON)
	ids, _ := s.Enqueue(textPayload("a.txt", "a"))

	if err := s.SelectActive("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// Selection is untouched by the failed call.
	if s.ActiveID() != ids[0] {
		t.Errorf("active = %q, want %q", s.ActiveID(), ids[0])
	}
}

func TestMarkTransitions_ResultFailureExclusive(t *testing.T) {
	s := New(types.TargetJSON)
	ids, _ := s.Enqueue(textPayload("a.txt", "a"))

	if err := s.MarkInProgress(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSucceeded(ids[0], "result"); err != nil {
		t.Fatal(err)
	}
	item, _ := s.Item(ids[0])
	if item.Result != "result" || item.FailureReason != "" {
		t.Errorf("succeeded item = %+v, want result only", item)
	}

	if err := s.MarkFailed(ids[0], "boom"); err != nil {
		t.Fatal(err)
	}
	item, _ = s.Item(ids[0])
	if item.FailureReason != "boom" || item.Result != "" {
		t.Errorf("failed item = %+v, want failure reason only", item)
	}
}

func TestRearmFailed(t *testing.T) {
	s := New(types.TargetJSON)
	ids, _ := s.Enqueue(
		textPayload("a.txt", "a"),
		textPayload("b.txt", "b"),
	)
	s.MarkSucceeded(ids[0], "done")
	s.MarkFailed(ids[1], "boom")

	if n := s.RearmFailed(); n != 1 {
		t.Fatalf("re-armed = %d, want 1", n)
	}

	a, _ := s.Item(ids[0])
	if a.Status != types.ItemSucceeded {
		t.Errorf("succeeded item must stay succeeded, got %q", a.Status)
	}
	b, _ := s.Item(ids[1])
	if b.Status != types.ItemPending || b.FailureReason != "" {
		t.Errorf("failed item should be pending again, got %+v", b)
	}
}

func TestSetters_ClearValidationError(t *testing.T) {
	s := New(types.TargetJSON)
	s.SetValidationError("no files queued")

	s.SetTarget(types.TargetYAML)
	if s.LastError() != "" {
		t.Error("SetTarget should clear the validation error")
	}
	if s.Target() != types.TargetYAML {
		t.Errorf("target = %q", s.Target())
	}

	s.SetValidationError("again")
	s.SetInputText("hello")
	if s.LastError() != "" {
		t.Error("SetInputText should clear the validation error")
	}
	if s.Mode() != types.ModeText {
		t.Errorf("mode = %q, want text", s.Mode())
	}
}
