package cloze_test

import (
	"context"
	"testing"

	"cloze-manager/core/collection"
	"cloze-manager/core/database"
	"cloze-manager/feature/cloze"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(message string) {
	r.messages = append(r.messages, message)
}

type recordingCheckpointer struct {
	names []string
	notes int
}

func (r *recordingCheckpointer) Checkpoint(_ context.Context, name string, notes []*collection.Note) (string, error) {
	r.names = append(r.names, name)
	r.notes += len(notes)
	return "snap-id", nil
}

func setupBatch(t *testing.T) (cloze.BatchDeps, *gorm.DB, *recordingNotifier, *recordingCheckpointer) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, collection.AutoMigrate(db))

	notifier := &recordingNotifier{}
	ckpt := &recordingCheckpointer{}
	deps := cloze.BatchDeps{
		Store:       collection.NewStore(db, zap.NewNop()),
		Checkpoints: ckpt,
		Notifier:    notifier,
		Refresher:   cloze.NopRefresher{},
		Logger:      zap.NewNop(),
	}
	return deps, db, notifier, ckpt
}

func seedVocab(t *testing.T, db *gorm.DB) *collection.Notetype {
	nt := &collection.Notetype{Name: "Vocab"}
	require.NoError(t, db.Create(nt).Error)
	for i, name := range []string{"Expression", "ExpressionCloze", "ExpressionCloze1", "ExpressionCloze2"} {
		require.NoError(t, db.Create(&collection.FieldDef{NotetypeID: nt.ID, Ord: i, Name: name}).Error)
	}
	return nt
}

func addNote(t *testing.T, db *gorm.DB, nt *collection.Notetype, values ...string) *collection.Note {
	note := &collection.Note{NotetypeID: nt.ID, Values: values}
	require.NoError(t, db.Create(note).Error)
	return note
}

func reload(t *testing.T, db *gorm.DB, id int64) *collection.Note {
	var note collection.Note
	require.NoError(t, db.First(&note, id).Error)
	return &note
}

func TestAutoCloze(t *testing.T) {
	deps, db, notifier, ckpt := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	empty := addNote(t, db, nt, "bonjour", "", "", "")
	filled := addNote(t, db, nt, "merci", "((c1::merci)) already", "1", "")

	report, err := cloze.AutoCloze(ctx, deps, []int64{empty.ID, filled.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "Updated 1 note", report.Notice)
	assert.Equal(t, []string{"Updated 1 note"}, notifier.messages)
	assert.Equal(t, []string{"Auto-cloze (2 notes)"}, ckpt.names)
	assert.Equal(t, 2, ckpt.notes)

	got := reload(t, db, empty.ID)
	assert.Equal(t, "((c1::bonjour))", got.Value(1))
	assert.Equal(t, "1", got.Value(2))

	// The already-clozed note is untouched.
	kept := reload(t, db, filled.ID)
	assert.Equal(t, "((c1::merci)) already", kept.Value(1))
}

func TestAutoClozeSkipsEmptySource(t *testing.T) {
	deps, db, _, _ := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	note := addNote(t, db, nt, "", "", "", "")

	report, err := cloze.AutoCloze(ctx, deps, []int64{note.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, "Updated 0 notes", report.Notice)
}

func TestAutoClozeSkipsOccupiedAuxSlot(t *testing.T) {
	deps, db, _, _ := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	note := addNote(t, db, nt, "salut", "", "manual", "")

	report, err := cloze.AutoCloze(ctx, deps, []int64{note.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Updated)

	got := reload(t, db, note.ID)
	assert.Equal(t, "", got.Value(1))
	assert.Equal(t, "manual", got.Value(2))
}

func TestAutoClozeEmptySelection(t *testing.T) {
	deps, _, notifier, ckpt := setupBatch(t)

	report, err := cloze.AutoCloze(context.Background(), deps, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, []string{"You must select some cards first"}, notifier.messages)
	assert.Empty(t, ckpt.names)
}

func TestCreateMissing(t *testing.T) {
	deps, db, notifier, ckpt := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	note := addNote(t, db, nt, "foo", "((c1::foo))", "", "stale")

	report, err := cloze.CreateMissing(ctx, deps, []int64{note.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"Updated 1 note"}, notifier.messages)
	assert.Equal(t, []string{"Create Missing Cloze Cards (1 note)"}, ckpt.names)

	got := reload(t, db, note.ID)
	assert.Equal(t, "1", got.Value(2))
	assert.Equal(t, "", got.Value(3))
}

func TestCreateMissingConverges(t *testing.T) {
	deps, db, _, _ := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	note := addNote(t, db, nt, "foo", "((c1::foo)) ((c2::bar))", "", "")

	first, err := cloze.CreateMissing(ctx, deps, []int64{note.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	// Second run has nothing to do: force mode converged.
	second, err := cloze.CreateMissing(ctx, deps, []int64{note.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
}

func TestCreateMissingOverwritesManualValues(t *testing.T) {
	deps, db, _, _ := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	// Force mode enforces the invariant unconditionally.
	note := addNote(t, db, nt, "foo", "((c2::foo))", "custom text", "")

	_, err := cloze.CreateMissing(ctx, deps, []int64{note.ID})
	require.NoError(t, err)

	got := reload(t, db, note.ID)
	assert.Equal(t, "", got.Value(2))
	assert.Equal(t, "1", got.Value(3))
}

func TestBatchSkipsUnknownNotes(t *testing.T) {
	deps, db, _, _ := setupBatch(t)
	ctx := context.Background()
	nt := seedVocab(t, db)

	note := addNote(t, db, nt, "oui", "", "", "")

	report, err := cloze.AutoCloze(ctx, deps, []int64{note.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Selected)
	assert.Equal(t, 1, report.Updated)
}
