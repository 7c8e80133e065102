package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloze-manager/core/collection"
	"cloze-manager/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const objectPrefix = "checkpoints/"

// Snapshot is the stored pre-mutation state of a batch operation's selection.
type Snapshot struct {
	// ID is the unique snapshot id.
	ID string `json:"id"`
	// Name is the operation label, e.g. "Auto-cloze (3 notes)".
	Name string `json:"name"`
	// CreatedAt is the snapshot creation time.
	CreatedAt time.Time `json:"created_at"`
	// Notes holds each selected note's field values before mutation.
	Notes []NoteState `json:"notes"`
}

// NoteState is one note's captured field values.
type NoteState struct {
	ID     int64    `json:"id"`
	Values []string `json:"values"`
}

// Manager writes undo-checkpoint snapshots to object storage.
// A nil Manager is valid and skips checkpointing entirely.
type Manager struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewManager creates a checkpoint manager over a storage client.
func NewManager(client storage.Client, bucket string, logger *zap.Logger) *Manager {
	return &Manager{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the checkpoint bucket if it does not exist yet.
func (m *Manager) EnsureBucket(ctx context.Context) error {
	if m == nil {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check checkpoint bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create checkpoint bucket: %w", err)
	}
	return nil
}

// Checkpoint captures the current state of the given notes under the
// operation name and uploads it as one JSON object. It returns the
// snapshot id, or "" when checkpointing is disabled.
func (m *Manager) Checkpoint(ctx context.Context, name string, notes []*collection.Note) (string, error) {
	if m == nil {
		return "", nil
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Notes:     make([]NoteState, 0, len(notes)),
	}
	for _, n := range notes {
		values := make([]string, len(n.Values))
		copy(values, n.Values)
		snap.Notes = append(snap.Notes, NoteState{ID: n.ID, Values: values})
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	object := fmt.Sprintf("%s%d-%s.json", objectPrefix, snap.CreatedAt.Unix(), snap.ID)
	_, err = m.client.PutObject(ctx, m.bucket, object, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload checkpoint %s: %w", object, err)
	}

	m.logger.Info("Checkpoint saved",
		zap.String("checkpoint_id", snap.ID),
		zap.String("name", name),
		zap.Int("notes", len(notes)),
	)
	return snap.ID, nil
}

// List returns the object names of all stored snapshots.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if m == nil {
		return nil, nil
	}
	var names []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: objectPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list checkpoints: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	return names, nil
}

// Load retrieves one snapshot by object name.
func (m *Manager) Load(ctx context.Context, object string) (*Snapshot, error) {
	if m == nil {
		return nil, fmt.Errorf("checkpointing is disabled")
	}
	reader, err := m.client.GetObject(ctx, m.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoint %s: %w", object, err)
	}
	defer reader.Close()

	var snap Snapshot
	if err := json.NewDecoder(reader).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint %s: %w", object, err)
	}
	return &snap, nil
}

// Prune removes one snapshot object.
func (m *Manager) Prune(ctx context.Context, object string) error {
	if m == nil {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove checkpoint %s: %w", object, err)
	}
	return nil
}
