package collection_test

import (
	"context"
	"testing"

	"cloze-manager/core/collection"
	"cloze-manager/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*collection.Store, *gorm.DB) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, collection.AutoMigrate(db))
	return collection.NewStore(db, zap.NewNop()), db
}

func seedNotetype(t *testing.T, db *gorm.DB, name string, fields ...string) *collection.Notetype {
	nt := &collection.Notetype{Name: name}
	require.NoError(t, db.Create(nt).Error)
	for i, f := range fields {
		require.NoError(t, db.Create(&collection.FieldDef{NotetypeID: nt.ID, Ord: i, Name: f}).Error)
	}
	nt.Fields = nil
	require.NoError(t, db.Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("ord") }).First(nt, nt.ID).Error)
	return nt
}

func TestNoteRoundTrip(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	nt := seedNotetype(t, db, "Vocab", "Expression", "ExpressionCloze", "ExpressionCloze1")

	note := &collection.Note{
		NotetypeID: nt.ID,
		Values:     []string{"bonjour", "((c1::bonjour))", "1"},
	}
	require.NoError(t, store.FlushNote(ctx, note))

	loaded, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bonjour", "((c1::bonjour))", "1"}, loaded.Values)

	// Mutate one ordinal and flush again
	loaded.SetValue(2, "")
	require.NoError(t, store.FlushNote(ctx, loaded))

	again, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "", again.Value(2))
	assert.Equal(t, "bonjour", again.Value(0))
}

func TestGetNotetypeOrdering(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	nt := seedNotetype(t, db, "Vocab", "Expression", "ExpressionCloze", "ExpressionCloze1", "ExpressionCloze2")

	loaded, err := store.GetNotetype(ctx, nt.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Fields, 4)
	for i, f := range loaded.Fields {
		assert.Equal(t, i, f.Ord)
	}
	assert.Equal(t, 1, loaded.FieldOrd("ExpressionCloze"))
	assert.Equal(t, -1, loaded.FieldOrd("Missing"))
}

func TestNotesByIDs(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	nt := seedNotetype(t, db, "Vocab", "Expression", "ExpressionCloze")

	first := &collection.Note{NotetypeID: nt.ID, Values: []string{"a", ""}}
	second := &collection.Note{NotetypeID: nt.ID, Values: []string{"b", ""}}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	// Order preserved, missing id skipped
	notes, err := store.NotesByIDs(ctx, []int64{second.ID, 9999, first.ID})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	empty, err := store.NotesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNoteIDsByNotetype(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	nt := seedNotetype(t, db, "Vocab", "Expression", "ExpressionCloze")
	other := seedNotetype(t, db, "Other", "Front")

	require.NoError(t, db.Create(&collection.Note{NotetypeID: nt.ID, Values: []string{"a", ""}}).Error)
	require.NoError(t, db.Create(&collection.Note{NotetypeID: other.ID, Values: []string{"x"}}).Error)

	ids, err := store.NoteIDsByNotetype(ctx, "Vocab")
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = store.NoteIDsByNotetype(ctx, "Nope")
	assert.Error(t, err)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGetNoteQueryError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := collection.NewStore(gormDB, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `notes`").WillReturnError(assert.AnError)

	_, err := store.GetNote(context.Background(), 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
