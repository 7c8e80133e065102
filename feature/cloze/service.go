package cloze

import (
	"context"
	"sync"

	"cloze-manager/core/collection"

	"go.uber.org/zap"
)

// Service wires the controller to the collection store and owns the
// currently open editor session. Field edits are single-user by contract;
// the mutex serializes bridge requests to preserve that guarantee.
type Service struct {
	store       *collection.Store
	checkpoints Checkpointer
	controller  *Controller
	logger      *zap.Logger

	mu      sync.Mutex
	current *Session
}

// NewService creates the cloze service.
func NewService(store *collection.Store, checkpoints Checkpointer, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		checkpoints: checkpoints,
		controller:  NewController(logger),
		logger:      logger,
	}
}

// InsertCloze opens the note, makes it the current session, and runs the
// insert-marker entry point on the focused field. Applied field updates are
// persisted before returning.
func (s *Service) InsertCloze(ctx context.Context, noteID int64, fieldOrd int, reuse bool) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openLocked(ctx, noteID, fieldOrd)
	if err != nil {
		return Outcome{}, err
	}

	out := s.controller.InsertCloze(sess, reuse)
	if len(out.Updates) > 0 {
		if err := s.store.FlushNote(ctx, sess.Note); err != nil {
			return out, err
		}
	}
	return out, nil
}

// HandleFieldEvent runs the live-edit entry point against the current
// session, then performs the host-equivalent handling: the edited field's
// own content is persisted whether or not the cloze pass produced anything.
// A controller fault (the ordinal lies outside the schema) skips the
// persist, so the stored blob never grows past the schema width. The
// returned error is an internal fault for the boundary to swallow.
func (s *Service) HandleFieldEvent(ctx context.Context, evt FieldEvent) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.current
	out, err := s.controller.HandleFieldEvent(sess, evt)

	if err == nil && sess != nil && sess.Note != nil && evt.NoteID == sess.Note.ID {
		sess.Note.SetValue(evt.Ord, evt.Content)
		if ferr := s.store.FlushNote(ctx, sess.Note); ferr != nil {
			s.logger.Warn("Failed to persist field edit", zap.Int64("note_id", evt.NoteID), zap.Error(ferr))
		}
	}

	return out, err
}

// OpenNote makes the given note the current editor session without running
// any entry point, mirroring the host opening a record for editing.
func (s *Service) OpenNote(ctx context.Context, noteID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.openLocked(ctx, noteID, 0)
	return err
}

func (s *Service) openLocked(ctx context.Context, noteID int64, fieldOrd int) (*Session, error) {
	if s.current != nil && s.current.Note.ID == noteID {
		s.current.CurrentOrd = fieldOrd
		return s.current, nil
	}

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	nt, err := s.store.GetNotetype(ctx, note.NotetypeID)
	if err != nil {
		return nil, err
	}

	s.current = &Session{Note: note, Notetype: nt, CurrentOrd: fieldOrd}
	return s.current, nil
}

// AutoCloze runs the auto-cloze batch operation over a selection.
func (s *Service) AutoCloze(ctx context.Context, noteIDs []int64) (BatchReport, error) {
	return AutoCloze(ctx, s.batchDeps(), noteIDs)
}

// CreateMissing runs the create-missing batch operation over a selection.
func (s *Service) CreateMissing(ctx context.Context, noteIDs []int64) (BatchReport, error) {
	return CreateMissing(ctx, s.batchDeps(), noteIDs)
}

func (s *Service) batchDeps() BatchDeps {
	return BatchDeps{
		Store:       s.store,
		Checkpoints: s.checkpoints,
		Notifier:    LogNotifier{Logger: s.logger},
		Refresher:   NopRefresher{},
		Logger:      s.logger,
	}
}
