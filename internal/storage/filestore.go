package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// downloadContentTypes maps known attachment extensions to the MIME type
// sent on download. Anything else falls back to application/octet-stream.
var downloadContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".csv":  "text/csv",
}

// previewExts is the set of extensions that may be rendered inline.
var previewExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// FileStore persists uploaded attachments on disk under a media root,
// partitioned by upload date: documents/YYYY/MM/DD/<uuid><ext>.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the media root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Save stores an uploaded file and returns its relative path under the
// media root. The stored name is a fresh UUID so uploads never collide;
// the caller keeps the original name on the owning record.
func (s *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	now := time.Now()
	relDir := filepath.Join("documents", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(filepath.Join(s.root, relDir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	relPath := filepath.Join(relDir, uuid.New().String()+ext)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write stored file: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}

// Remove deletes the physical file for a relative path. Removing a path
// that no longer exists is not an error.
func (s *FileStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(s.Path(relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored file %s: %w", relPath, err)
	}
	return nil
}

// Path returns the absolute on-disk path for a stored relative path.
func (s *FileStore) Path(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Exists reports whether the stored file is present on disk.
func (s *FileStore) Exists(relPath string) bool {
	if relPath == "" {
		return false
	}
	info, err := os.Stat(s.Path(relPath))
	return err == nil && !info.IsDir()
}

// Size returns the byte size of a stored file.
func (s *FileStore) Size(relPath string) (int64, error) {
	info, err := os.Stat(s.Path(relPath))
	if err != nil {
		return 0, fmt.Errorf("failed to stat stored file %s: %w", relPath, err)
	}
	return info.Size(), nil
}

// URL returns the public URL for a stored file.
func (s *FileStore) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/media/" + filepath.ToSlash(relPath)
}

// DownloadContentType returns the MIME type used when serving an
// attachment with the given extension as a download.
func DownloadContentType(ext string) string {
	if ct, ok := downloadContentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// PreviewAllowed reports whether an extension may be previewed inline.
func PreviewAllowed(ext string) bool {
	return previewExts[strings.ToLower(ext)]
}

// PreviewContentType returns the MIME type used for inline previews.
// Image previews are typed directly from the extension, so ".jpg" maps
// to "image/jpg".
func PreviewContentType(ext string) string {
	ext = strings.ToLower(ext)
	if ext == ".pdf" {
		return "application/pdf"
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}

// FormatSize converts a byte count to a human readable string using a
// 1024 divisor and one decimal place: "512.0 bytes", "1.5 KB", ...
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"bytes", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", value)
}
