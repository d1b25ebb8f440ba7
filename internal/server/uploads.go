package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// audio extensions the player can actually load; images are allowed for
// question artwork.
var audioExts = map[string]bool{".mp3": true, ".m4a": true, ".wav": true}
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadDir manages the media files referenced by audio tracks and
// question artwork. Filenames are randomized on save so uploads can
// never collide or clobber each other.
type UploadDir struct {
	dir string
}

func NewUploadDir(dir string) (*UploadDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &UploadDir{dir: dir}, nil
}

func (u *UploadDir) Dir() string { return u.dir }

// Allowed reports whether ext (with leading dot) may be uploaded.
func (u *UploadDir) Allowed(ext string) bool {
	ext = strings.ToLower(ext)
	return audioExts[ext] || imageExts[ext]
}

// Save streams src into a new randomly named file, returning the stored
// filename.
func (u *UploadDir) Save(src io.Reader, originalName string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating filename: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s",
		time.Now().UnixMilli(),
		hex.EncodeToString(suffix),
		strings.ToLower(filepath.Ext(originalName)),
	)

	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return name, nil
}

// AudioFile is one playable track in the uploads directory.
type AudioFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// ListAudio returns the uploaded audio files, skipping images and
// anything else that wandered in.
func (u *UploadDir) ListAudio() ([]AudioFile, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	files := make([]AudioFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !audioExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, AudioFile{
			Filename: e.Name(),
			URL:      "/uploads/" + e.Name(),
		})
	}
	return files, nil
}

// Delete removes one uploaded file. The name is reduced to its base to
// keep callers from escaping the directory.
func (u *UploadDir) Delete(name string) error {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(u.dir, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
