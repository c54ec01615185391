package services

import "errors"

// Protocol errors: returned when the request/confirm cycle is misused. Per-item
// failures use the taxonomy in the models package and never surface here.
var (
	ErrActionPending   = errors.New("another action is awaiting confirmation")
	ErrNoPendingAction = errors.New("no action is awaiting confirmation")
	ErrActionMismatch  = errors.New("action does not match the pending action")
)
