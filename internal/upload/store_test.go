package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frichat/internal/models"
	"frichat/internal/service"
)

func multipartFile(t *testing.T, name, mimeType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="` + name + `"`},
		"Content-Type":        {mimeType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestSaveStoresImageUnderImagesDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 1<<20, []string{"image/png"})
	require.NoError(t, err)

	file, err := store.Save(multipartFile(t, "cat.png", "image/png", []byte("png-bytes")))
	require.NoError(t, err)

	assert.Equal(t, "cat.png", file.OriginalName)
	assert.Equal(t, models.MessageTypeImage, file.FileType)
	assert.Equal(t, "image/png", file.MimeType)
	assert.Equal(t, int64(9), file.FileSize)
	assert.Equal(t, ".png", filepath.Ext(file.StoredName))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(file.UploadPath)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), stored)
	assert.Contains(t, file.UploadPath, "images/")
}

func TestSaveRejectsDisallowedMimeType(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1<<20, []string{"image/png"})
	require.NoError(t, err)

	_, err = store.Save(multipartFile(t, "script.sh", "application/x-sh", []byte("#!/bin/sh")))
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4, []string{"image/png"})
	require.NoError(t, err)

	_, err = store.Save(multipartFile(t, "big.png", "image/png", []byte("too large")))
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestMessageTypeFor(t *testing.T) {
	assert.Equal(t, models.MessageTypeImage, MessageTypeFor("image/jpeg"))
	assert.Equal(t, models.MessageTypeVideo, MessageTypeFor("video/mp4"))
	assert.Equal(t, models.MessageTypeFile, MessageTypeFor("application/pdf"))
}
