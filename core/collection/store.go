package collection

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store provides access to the collection database.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a collection store over an open database handle.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or updates the collection tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Notetype{}, &FieldDef{}, &Note{})
}

// GetNote loads one note by id.
func (s *Store) GetNote(ctx context.Context, id int64) (*Note, error) {
	var note Note
	if err := s.db.WithContext(ctx).First(&note, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load note %d: %w", id, err)
	}
	return &note, nil
}

// GetNotetype loads one notetype with its fields ordered by ordinal.
func (s *Store) GetNotetype(ctx context.Context, id int64) (*Notetype, error) {
	var nt Notetype
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("ord") }).
		First(&nt, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notetype %d: %w", id, err)
	}
	return &nt, nil
}

// GetNotetypeByName loads a notetype by its unique name.
func (s *Store) GetNotetypeByName(ctx context.Context, name string) (*Notetype, error) {
	var nt Notetype
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("ord") }).
		Where("name = ?", name).First(&nt).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notetype %q: %w", name, err)
	}
	return &nt, nil
}

// FlushNote persists one note's current field values.
func (s *Store) FlushNote(ctx context.Context, note *Note) error {
	if err := s.db.WithContext(ctx).Save(note).Error; err != nil {
		return fmt.Errorf("failed to flush note %d: %w", note.ID, err)
	}
	return nil
}

// NotesByIDs enumerates a selection of notes preserving the requested order.
// Missing ids are skipped; the caller treats them as not-updated.
func (s *Store) NotesByIDs(ctx context.Context, ids []int64) ([]*Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var loaded []*Note
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&loaded).Error; err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}

	byID := make(map[int64]*Note, len(loaded))
	for _, n := range loaded {
		byID[n.ID] = n
	}

	notes := make([]*Note, 0, len(loaded))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			notes = append(notes, n)
		} else {
			s.logger.Warn("Selected note not found", zap.Int64("note_id", id))
		}
	}
	return notes, nil
}

// NoteIDsByNotetype returns the ids of every note of the named notetype.
func (s *Store) NoteIDsByNotetype(ctx context.Context, name string) ([]int64, error) {
	nt, err := s.GetNotetypeByName(ctx, name)
	if err != nil {
		return nil, err
	}
	var ids []int64
	err = s.db.WithContext(ctx).Model(&Note{}).
		Where("notetype_id = ?", nt.ID).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate notes of %q: %w", name, err)
	}
	return ids, nil
}
