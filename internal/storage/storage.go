package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// Uploader archives raw uploads outside the local note directory.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// ArchiveObjectName places an upload under uploads/<YYYY>/<MM>/<jobID><ext>.
func ArchiveObjectName(jobID, filename string, at time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("uploads", at.UTC().Format("2006"), at.UTC().Format("01"), jobID+ext)
}
