package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaKey(t *testing.T) {
	key, err := MediaKey("65f0c0ffee", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "exercises/65f0c0ffee/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other, err := MediaKey("65f0c0ffee", "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	key, err = MediaKey("abc", "video/MP4; codecs=avc1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".mp4"))
}

func TestMediaKeyRejectsUnsupportedTypes(t *testing.T) {
	_, err := MediaKey("abc", "application/pdf")
	assert.Error(t, err)

	_, err = MediaKey("abc", "")
	assert.Error(t, err)
}
