package cloze_test

import (
	"testing"

	"cloze-manager/core/checkpoint"
	"cloze-manager/feature/cloze"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	// Store access is lazy; nil is fine until a route is exercised.
	feature := cloze.NewFeature(nil, (*checkpoint.Manager)(nil), zap.NewNop())

	assert.Equal(t, "cloze", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}
