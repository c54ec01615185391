package models

import (
	"fmt"
	"time"
)

// ActionKind tags a batch operation
type ActionKind int

const (
	ActionCopy ActionKind = iota + 1
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionCopy:
		return "copy"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Title is the capitalised verb used in dialogs and buttons
func (k ActionKind) Title() string {
	switch k {
	case ActionCopy:
		return "Copy"
	case ActionDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Destructive reports whether the action removes data
func (k ActionKind) Destructive() bool {
	return k == ActionDelete
}

// PendingAction is a batch operation awaiting user confirmation. Refs is a
// snapshot of the selection at request time.
type PendingAction struct {
	ID          string
	Kind        ActionKind
	Refs        []ImageReference
	RequestedAt time.Time
}

// ConfirmMessage is the prompt shown before executing the action
func (p PendingAction) ConfirmMessage() string {
	switch n := len(p.Refs); {
	case n == 0:
		return fmt.Sprintf("No images are selected. %s nothing?", p.Kind.Title())
	case p.Kind.Destructive():
		return fmt.Sprintf("Permanently delete %s? This cannot be undone.", pluralImages(n))
	default:
		return fmt.Sprintf("%s %s?", p.Kind.Title(), pluralImages(n))
	}
}

// ItemFailure records why one reference in a batch was skipped
type ItemFailure struct {
	Ref ImageReference
	Err error
}

// BatchResult summarises an executed PendingAction
type BatchResult struct {
	ActionID  string
	Kind      ActionKind
	Succeeded int
	Failed    int
	Failures  []ItemFailure
	Duration  time.Duration
}

// Total returns the number of items the batch attempted
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// OK reports whether every item succeeded
func (r BatchResult) OK() bool {
	return r.Failed == 0
}

// Summary is the single aggregate notification shown after a batch
func (r BatchResult) Summary() string {
	if r.Total() == 0 {
		return "No images selected"
	}
	if r.OK() {
		past := "Copied"
		if r.Kind == ActionDelete {
			past = "Deleted"
		}
		return fmt.Sprintf("%s %s", past, pluralImages(r.Succeeded))
	}
	failures := "failures"
	if r.Failed == 1 {
		failures = "failure"
	}
	return fmt.Sprintf("%s finished with %d %s (%d of %d succeeded)",
		r.Kind.Title(), r.Failed, failures, r.Succeeded, r.Total())
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}
