package recording

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

const fallbackNameLayout = "20060102_150405"

// DefaultFallbackDir is ~/Downloads/Scribely.
func DefaultFallbackDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Downloads", "Scribely"), nil
}

// LocalStore keeps a copy of recordings that could not be uploaded.
type LocalStore struct {
	dir string // empty means DefaultFallbackDir
	log *logrus.Logger
	now func() time.Time
}

func NewLocalStore(dir string, log *logrus.Logger) *LocalStore {
	return &LocalStore{dir: dir, log: log, now: time.Now}
}

// FileName is scribely_<yyyyMMdd_HHmmss>.m4a in local time. Two saves in the
// same second share a name and the later one wins.
func (s *LocalStore) FileName() string {
	return "scribely_" + s.now().Format(fallbackNameLayout) + ".m4a"
}

// SaveLocally copies audioPath into the fallback directory. The copy is
// written to a temporary file and renamed into place, so a LocalSave always
// names a complete file.
func (s *LocalStore) SaveLocally(audioPath string) UploadResult {
	dir := s.dir
	if dir == "" {
		d, err := DefaultFallbackDir()
		if err != nil {
			return UploadError{Message: "Failed to save recording locally", Cause: err}
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadError{Message: "Failed to create local save directory", Cause: err}
	}

	dest := filepath.Join(dir, s.FileName())
	if err := copyAtomic(audioPath, dest); err != nil {
		s.log.WithError(err).WithField("source", audioPath).Error("local save failed")
		return UploadError{Message: "Failed to save recording locally", Cause: err}
	}

	s.log.WithField("path", dest).Info("recording saved locally")
	return LocalSave{FilePath: dest}
}

func copyAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer in.Close()

	pending, err := renameio.NewPendingFile(dest, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("copy recording: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", dest, err)
	}
	return nil
}
