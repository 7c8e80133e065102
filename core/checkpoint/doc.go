// Package checkpoint implements undo-checkpoint snapshots for batch operations.
//
// Before a batch operation mutates a selection of notes, the pre-mutation
// field values of the whole selection are captured into one JSON snapshot
// and uploaded to object storage. The snapshot is a durable artifact that
// can be inspected or restored after a misfired batch run.
//
// A nil *Manager is a valid no-op: batch operations still run, they just
// carry no undo boundary. This mirrors setups without object storage.
package checkpoint
