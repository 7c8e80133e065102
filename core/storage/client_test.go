package storage_test

import (
	"testing"

	"cloze-manager/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cfg := storage.Config{
		Endpoint:  "localhost:9000",
		AccessKey: "snapshots",
		SecretKey: "snapshots-secret",
		Bucket:    "checkpoints",
	}

	client, err := storage.NewClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClientStripsScheme(t *testing.T) {
	// Operators tend to paste the full URL from their minio console; the
	// client accepts either form.
	for _, endpoint := range []string{"http://localhost:9000", "https://s3.amazonaws.com"} {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  endpoint,
			AccessKey: "snapshots",
			SecretKey: "snapshots-secret",
		})
		require.NoError(t, err, endpoint)
		assert.NotNil(t, client)
	}
}

func TestNewClientRejectsPathEndpoint(t *testing.T) {
	_, err := storage.NewClient(storage.Config{
		Endpoint:  "localhost:9000/checkpoints",
		AccessKey: "snapshots",
		SecretKey: "snapshots-secret",
	})
	assert.Error(t, err)
}
