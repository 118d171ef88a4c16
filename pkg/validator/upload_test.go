package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRuleValidateExtension(t *testing.T) {
	rule := ImageRule(0)

	ext, err := rule.ValidateExtension("Photo.JPG")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = rule.ValidateExtension("model.glb")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = rule.ValidateExtension("README")
	require.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.Contains(t, err.Error(), "(none)")

	_, err = PreviewRule(0).ValidateExtension("source.blend")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = ModelRule(0).ValidateExtension("source.blend")
	assert.NoError(t, err)
}

func TestUploadRuleValidateFileSize(t *testing.T) {
	rule := ImageRule(100)
	assert.NoError(t, rule.ValidateFileSize(0))
	assert.NoError(t, rule.ValidateFileSize(100))
	assert.ErrorIs(t, rule.ValidateFileSize(101), ErrFileTooLarge)
}

func TestRuleDefaults(t *testing.T) {
	assert.EqualValues(t, DefaultImageMaxSize, ImageRule(0).MaxFileSize)
	assert.EqualValues(t, DefaultModelMaxSize, ModelRule(-1).MaxFileSize)
	assert.EqualValues(t, DefaultModelMaxSize, PreviewRule(0).MaxFileSize)
	assert.EqualValues(t, DefaultImageMaxSize, ThumbnailRule(0).MaxFileSize)
	assert.EqualValues(t, 42, ThumbnailRule(42).MaxFileSize)
}
