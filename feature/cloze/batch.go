package cloze

import (
	"context"
	"fmt"
	"strings"

	"cloze-manager/core/collection"

	"go.uber.org/zap"
)

// BatchDeps bundles the collaborators batch operations consume.
type BatchDeps struct {
	Store       *collection.Store
	Checkpoints Checkpointer
	Notifier    Notifier
	Refresher   Refresher
	Logger      *zap.Logger
}

// BatchReport summarizes one batch run over a selection of notes.
type BatchReport struct {
	// Selected is the number of note ids in the selection.
	Selected int
	// Updated is the number of notes actually changed and persisted.
	Updated int
	// FailedIDs lists notes skipped because of store faults. Processing
	// continues past them; re-running the batch converges.
	FailedIDs []int64
	// Notice is the user-facing summary shown via the Notifier.
	Notice string
}

// AutoCloze fills each empty <Base>Cloze field from its <Base> source field,
// wrapping the whole content as a single c1 deletion, for every note in the
// selection. Useful when the entire field should be one cloze; selecting
// many cards and clozing them in batch beats doing it one by one.
func AutoCloze(ctx context.Context, deps BatchDeps, noteIDs []int64) (BatchReport, error) {
	return runBatch(ctx, deps, noteIDs, "Auto-cloze", autoClozeNote)
}

// CreateMissing forces every auxiliary field of every <Base>Cloze field in
// the selection to match the markers present in its content. Only needed for
// notes edited before the integration was installed; live editing keeps the
// fields in sync on its own.
func CreateMissing(ctx context.Context, deps BatchDeps, noteIDs []int64) (BatchReport, error) {
	return runBatch(ctx, deps, noteIDs, "Create Missing Cloze Cards", createMissingNote)
}

// runBatch drives one batch operation: checkpoint the selection, process
// each note independently, flush only the changed ones, and report.
func runBatch(
	ctx context.Context,
	deps BatchDeps,
	noteIDs []int64,
	opName string,
	process func(note *collection.Note, nt *collection.Notetype) bool,
) (BatchReport, error) {
	report := BatchReport{Selected: len(noteIDs)}

	if len(noteIDs) == 0 {
		report.Notice = "You must select some cards first"
		deps.Notifier.Notify(report.Notice)
		return report, nil
	}

	notes, err := deps.Store.NotesByIDs(ctx, noteIDs)
	if err != nil {
		return report, fmt.Errorf("%s: %w", strings.ToLower(opName), err)
	}

	checkpointName := fmt.Sprintf("%s (%d %s)", opName, len(noteIDs), noteWord(len(noteIDs)))
	if _, err := deps.Checkpoints.Checkpoint(ctx, checkpointName, notes); err != nil {
		return report, fmt.Errorf("checkpoint for %s failed: %w", opName, err)
	}

	deps.Refresher.BeginReset()
	defer deps.Refresher.EndReset()

	notetypes := make(map[int64]*collection.Notetype)
	for _, note := range notes {
		nt, ok := notetypes[note.NotetypeID]
		if !ok {
			loaded, err := deps.Store.GetNotetype(ctx, note.NotetypeID)
			if err != nil {
				deps.Logger.Warn("Skipping note with unloadable notetype",
					zap.Int64("note_id", note.ID), zap.Error(err))
				report.FailedIDs = append(report.FailedIDs, note.ID)
				continue
			}
			nt = loaded
			notetypes[note.NotetypeID] = nt
		}

		if !process(note, nt) {
			continue
		}

		if err := deps.Store.FlushNote(ctx, note); err != nil {
			deps.Logger.Warn("Failed to persist note, continuing",
				zap.Int64("note_id", note.ID), zap.Error(err))
			report.FailedIDs = append(report.FailedIDs, note.ID)
			continue
		}
		report.Updated++
	}

	report.Notice = fmt.Sprintf("Updated %d %s", report.Updated, noteWord(report.Updated))
	deps.Notifier.Notify(report.Notice)
	return report, nil
}

// autoClozeNote fills empty Cloze fields from their source fields.
// Returns whether the note changed.
func autoClozeNote(note *collection.Note, nt *collection.Notetype) bool {
	changed := false
	for _, f := range nt.Fields {
		if !strings.HasSuffix(f.Name, Suffix) || strings.TrimSpace(note.Value(f.Ord)) != "" {
			continue
		}

		sourceOrd := nt.FieldOrd(strings.TrimSuffix(f.Name, Suffix))
		auxOrd := nt.FieldOrd(f.Name + "1")
		if sourceOrd < 0 || auxOrd < 0 {
			continue
		}

		content := note.Value(sourceOrd)
		if content == "" || strings.TrimSpace(note.Value(auxOrd)) != "" {
			continue
		}

		note.SetValue(f.Ord, "((c1::"+content+"))")
		note.SetValue(auxOrd, ActiveValue)
		changed = true
	}
	return changed
}

// createMissingNote force-reconciles every Cloze field's auxiliary fields
// with the markers present in its content. Returns whether the note changed.
func createMissingNote(note *collection.Note, nt *collection.Notetype) bool {
	changed := false
	for _, f := range nt.Fields {
		if !strings.HasSuffix(f.Name, Suffix) {
			continue
		}
		nums := ScanNums(note.Value(f.Ord))
		updates, _ := Reconcile(note, nums, f.Name, nt.Fields, PolicyForce)
		if len(updates) > 0 {
			changed = true
		}
	}
	return changed
}

func noteWord(n int) string {
	if n == 1 {
		return "note"
	}
	return "notes"
}
