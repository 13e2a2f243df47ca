// Package upload stores multipart files on local disk and serves them back
// under the /uploads URL prefix.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rental-manager/internal/clock"
	"rental-manager/internal/config"
)

// URLPrefix is where the upload directory is mounted
const URLPrefix = "/uploads"

var (
	ErrExtension = errors.New("file extension not allowed")
	ErrTooLarge  = errors.New("file too large")
)

// Kind selects the allowed extensions
type Kind int

const (
	// KindImage accepts image extensions only
	KindImage Kind = iota
	// KindDocument accepts documents and scanned images
	KindDocument
)

// File describes a stored upload
type File struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	Size             int64  `json:"size"`
	ContentType      string `json:"type"`
}

type Storage struct {
	dir       string
	maxSize   int64
	images    map[string]bool
	documents map[string]bool
	clock     clock.Clock
}

func NewStorage(cfg config.UploadConfig, c clock.Clock) *Storage {
	s := &Storage{
		dir:       cfg.Dir,
		maxSize:   cfg.GetMaxSize(),
		images:    map[string]bool{},
		documents: map[string]bool{},
		clock:     c,
	}
	for _, ext := range cfg.ImageExtensions {
		s.images[strings.ToLower(ext)] = true
		s.documents[strings.ToLower(ext)] = true
	}
	for _, ext := range cfg.DocumentExtensions {
		s.documents[strings.ToLower(ext)] = true
	}
	return s
}

// Dir returns the root directory on disk
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) allowed(ext string, kind Kind) bool {
	if kind == KindImage {
		return s.images[ext]
	}
	return s.documents[ext]
}

// Save validates fh and writes it under folder with a unique name
func (s *Storage) Save(fh *multipart.FileHeader, folder string, kind Kind) (*File, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !s.allowed(ext, kind) {
		return nil, fmt.Errorf("%w: %q", ErrExtension, ext)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, fh.Size, s.maxSize)
	}

	folder = cleanFolder(folder)
	name := s.uniqueName(ext)
	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	log.WithFields(log.Fields{"folder": folder, "file": name, "size": written}).Info("[upload] stored file")

	return &File{
		Filename:         name,
		OriginalFilename: fh.Filename,
		URL:              URLPrefix + "/" + folder + "/" + name,
		Size:             written,
		ContentType:      fh.Header.Get("Content-Type"),
	}, nil
}

// Delete removes the file behind a URL returned by Save. Missing files are ignored.
func (s *Storage) Delete(url string) error {
	rel := strings.TrimPrefix(url, URLPrefix+"/")
	if rel == url || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("not an upload url: %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// uniqueName is YYYYmmdd_HHMMSS_<8 hex chars><ext>
func (s *Storage) uniqueName(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return s.clock.Now().Format("20060102_150405") + "_" + id + ext
}

// cleanFolder keeps a folder name inside the upload dir
func cleanFolder(folder string) string {
	folder = strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}
