package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPhotoSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pike.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o600))

	data, contentType, err := ReadPhotoSource(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestReadPhotoSource_FileMissing(t *testing.T) {
	_, _, err := ReadPhotoSource(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
}

func TestReadPhotoSource_DataURL(t *testing.T) {
	data, contentType, err := ReadPhotoSource("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestReadPhotoSource_DataURLInvalid(t *testing.T) {
	_, _, err := ReadPhotoSource("data:image/png;base64")
	require.Error(t, err)

	_, _, err = ReadPhotoSource("data:image/png,plain-not-base64")
	require.Error(t, err)

	_, _, err = ReadPhotoSource("data:image/png;base64,!!!")
	require.Error(t, err)
}
