package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/scribely/internal/models"
	pgrepo "github.com/yoockh/scribely/internal/repositories/postgres"
	"github.com/yoockh/scribely/internal/utils"
)

const (
	defaultCategory = "notes"
	defaultFilename = "untitled-note"
)

// DefaultSpecialCategories maps categories to nested directories.
var DefaultSpecialCategories = map[string]string{
	"daily": "daily/tasks",
}

// NoteWriter persists a generated markdown note and returns where it landed.
type NoteWriter interface {
	Save(ctx context.Context, content, source string) (string, error)
}

type noteWriter struct {
	baseDir string
	special map[string]string
	repo    pgrepo.NoteRepository // optional
	log     *logrus.Logger
	now     func() time.Time
}

func NewNoteWriter(baseDir string, special map[string]string, repo pgrepo.NoteRepository, log *logrus.Logger) NoteWriter {
	if special == nil {
		special = DefaultSpecialCategories
	}
	return &noteWriter{baseDir: baseDir, special: special, repo: repo, log: log, now: time.Now}
}

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun    = regexp.MustCompile(`-+`)
	titleLine  = regexp.MustCompile(`(?m)^# (.+)$`)
	dotSegment = regexp.MustCompile(`(^|/)\.\.?(/|$)`)
)

func (w *noteWriter) Save(ctx context.Context, content, source string) (string, error) {
	const op = "NoteWriter.Save"

	meta, body, ok := parseFrontmatter(strings.TrimSpace(content))
	if !ok {
		w.log.Warn("no frontmatter found in note, using defaults")
		body = strings.TrimSpace(content)
	}
	category := strings.TrimSpace(meta.Category)
	if category == "" {
		category = defaultCategory
	}

	dir := filepath.Join(w.baseDir, w.categoryDir(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", utils.E(utils.CodeInternal, op, "File system error", err)
	}

	path := filepath.Join(dir, w.now().UTC().Format("2006-01-02")+"_"+Slugify(meta.Filename)+".md")
	if err := renameio.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
		return "", utils.E(utils.CodeInternal, op, "File system error", err)
	}
	w.log.WithFields(logrus.Fields{"path": path, "category": category}).Info("note saved")

	if w.repo != nil {
		w.index(ctx, path, category, source, meta, body)
	}
	return path, nil
}

// categoryDir resolves the directory for a category. Free-form categories are
// slugged so an LLM answer can never escape the base directory.
func (w *noteWriter) categoryDir(category string) string {
	if d, ok := w.special[category]; ok && !dotSegment.MatchString(d) {
		return filepath.FromSlash(d)
	}
	s := Slugify(category)
	if s == defaultFilename {
		return defaultCategory
	}
	return s
}

func (w *noteWriter) index(ctx context.Context, path, category, source string, meta noteMeta, body string) {
	raw, _ := json.Marshal(meta)
	title := ""
	if m := titleLine.FindStringSubmatch(body); m != nil {
		title = strings.TrimSpace(m[1])
	}
	row := &models.Note{
		ID:        uuid.NewString(),
		Category:  category,
		Title:     title,
		SavedTo:   path,
		Source:    source,
		Tags:      meta.Tags,
		Metadata:  datatypes.JSON(raw),
		CreatedAt: w.now().UTC(),
	}
	if err := w.repo.Insert(ctx, row); err != nil {
		w.log.WithError(err).WithField("path", path).Warn("failed to index note")
	}
}

// Slugify lowercases s and collapses anything outside [a-z0-9-] into single
// dashes. An empty result falls back to "untitled-note".
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(dashRun.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return defaultFilename
	}
	return s
}
