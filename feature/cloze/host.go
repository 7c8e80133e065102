package cloze

import (
	"context"

	"cloze-manager/core/collection"

	"go.uber.org/zap"
)

// Notifier shows a transient, non-blocking notification to the user.
type Notifier interface {
	Notify(message string)
}

// Refresher marks the coarse view refresh boundary around a batch operation.
// The host reloads its record view between BeginReset and EndReset, so batch
// paths emit no per-field UI commands.
type Refresher interface {
	BeginReset()
	EndReset()
}

// Checkpointer captures an undo boundary for a batch operation, named after
// the operation and covering the pre-mutation state of the whole selection.
type Checkpointer interface {
	Checkpoint(ctx context.Context, name string, notes []*collection.Note) (string, error)
}

// LogNotifier is a Notifier that writes notices to the application log.
// The CLI and bridge paths use it; tests substitute a recorder.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(message string) {
	n.Logger.Info(message)
}

// NopRefresher is a Refresher for hosts without a record view to reset.
type NopRefresher struct{}

func (NopRefresher) BeginReset() {}
func (NopRefresher) EndReset()   {}
