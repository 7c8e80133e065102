package checkpoint_test

import (
	"context"
	"io"
	"testing"

	"cloze-manager/core/checkpoint"
	"cloze-manager/core/collection"
	"cloze-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckpoint(t *testing.T) {
	mockClient := new(mocks.Client)
	mgr := checkpoint.NewManager(mockClient, "test-bucket", zap.NewNop())

	var uploaded []byte
	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reader := args.Get(3).(io.Reader)
			uploaded, _ = io.ReadAll(reader)
		}).
		Return(minio.UploadInfo{}, nil)

	notes := []*collection.Note{
		{ID: 1, Values: []string{"((c1::foo))", "1"}},
		{ID: 2, Values: []string{"", ""}},
	}

	id, err := mgr.Checkpoint(context.Background(), "Auto-cloze (2 notes)", notes)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, string(uploaded), "Auto-cloze (2 notes)")
	assert.Contains(t, string(uploaded), "((c1::foo))")
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestCheckpointUploadError(t *testing.T) {
	mockClient := new(mocks.Client)
	mgr := checkpoint.NewManager(mockClient, "test-bucket", zap.NewNop())

	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := mgr.Checkpoint(context.Background(), "Create Missing Cloze Cards (1 note)", nil)
	assert.Error(t, err)
}

func TestNilManagerIsNoop(t *testing.T) {
	var mgr *checkpoint.Manager

	id, err := mgr.Checkpoint(context.Background(), "anything", nil)
	assert.NoError(t, err)
	assert.Empty(t, id)

	assert.NoError(t, mgr.EnsureBucket(context.Background()))

	names, err := mgr.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestEnsureBucket(t *testing.T) {
	mockClient := new(mocks.Client)
	mgr := checkpoint.NewManager(mockClient, "test-bucket", zap.NewNop())

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)

	require.NoError(t, mgr.EnsureBucket(context.Background()))
	mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "test-bucket", mock.Anything)
}

func TestList(t *testing.T) {
	mockClient := new(mocks.Client)
	mgr := checkpoint.NewManager(mockClient, "test-bucket", zap.NewNop())

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "checkpoints/1-abc.json"}
	ch <- minio.ObjectInfo{Key: "checkpoints/other.txt"}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	names, err := mgr.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"checkpoints/1-abc.json"}, names)
}
