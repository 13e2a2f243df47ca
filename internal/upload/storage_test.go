package upload

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-manager/internal/clock"
	"rental-manager/internal/config"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newStorage(t *testing.T) *Storage {
	cfg := config.DefaultConfig().Upload
	cfg.Dir = t.TempDir()
	cfg.MaxSizeMB = 1
	return NewStorage(cfg, clock.Fixed{T: time.Date(2025, 4, 3, 14, 5, 9, 0, time.UTC)})
}

func TestSave(t *testing.T) {
	s := newStorage(t)

	f, err := s.Save(fileHeader(t, "Foto Sala.JPG", []byte("jpeg-bytes")), "properties/4", KindImage)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^20250403_140509_[0-9a-f]{8}\.jpg$`), f.Filename)
	assert.Equal(t, "Foto Sala.JPG", f.OriginalFilename)
	assert.Equal(t, "/uploads/properties/4/"+f.Filename, f.URL)
	assert.Equal(t, int64(10), f.Size)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "properties", "4", f.Filename))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, s.Delete(f.URL))
	_, err = os.Stat(filepath.Join(s.Dir(), "properties", "4", f.Filename))
	assert.True(t, os.IsNotExist(err))
	// deleting twice is fine
	assert.NoError(t, s.Delete(f.URL))
}

func TestSaveRejects(t *testing.T) {
	s := newStorage(t)

	_, err := s.Save(fileHeader(t, "contract.pdf", []byte("%PDF")), "contracts", KindImage)
	assert.ErrorIs(t, err, ErrExtension)

	_, err = s.Save(fileHeader(t, "run.exe", []byte("MZ")), "tenants", KindDocument)
	assert.ErrorIs(t, err, ErrExtension)

	big := []byte(strings.Repeat("x", 1024*1024+1))
	_, err = s.Save(fileHeader(t, "scan.pdf", big), "tenants", KindDocument)
	assert.ErrorIs(t, err, ErrTooLarge)

	// documents also accept scanned images
	_, err = s.Save(fileHeader(t, "rg.png", []byte("png")), "tenants/1", KindDocument)
	assert.NoError(t, err)
}

func TestCleanFolder(t *testing.T) {
	assert.Equal(t, "tenants/3", cleanFolder("tenants/3"))
	assert.Equal(t, "etc", cleanFolder("../../etc"))
	assert.Equal(t, "misc", cleanFolder(""))
}

func TestDeleteRejectsForeignURL(t *testing.T) {
	s := newStorage(t)
	assert.Error(t, s.Delete("/etc/passwd"))
	assert.Error(t, s.Delete("/uploads/../secret"))
}
