package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yoockh/scribely/internal/models"
)

var (
	textMimeTypes = []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"application/x-markdown",
	}
	audioMimeTypes = []string{
		"audio/mpeg", "audio/mp3",
		"audio/wav", "audio/wave", "audio/x-wav",
		"audio/aiff", "audio/x-aiff",
		"audio/ogg",
		"audio/flac", "audio/x-flac",
		"audio/mp4", "audio/m4a",
		"audio/webm",
	}
	textExtensions  = []string{".txt", ".md", ".markdown", ".text"}
	audioExtensions = []string{".mp3", ".wav", ".wave", ".aiff", ".aif", ".ogg", ".flac", ".m4a", ".mp4", ".webm"}

	// known binary containers are rejected even when the MIME type claims text
	binaryExtensions = []string{
		".exe", ".bin", ".dll", ".so", ".dylib", ".app",
		".zip", ".rar", ".7z", ".tar", ".gz",
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff",
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
		".dmg", ".iso", ".img",
	}
)

// SupportedFormats lists the accepted extensions per file type.
type SupportedFormats struct {
	Text  []string `json:"text"`
	Audio []string `json:"audio"`
}

func Formats() SupportedFormats {
	return SupportedFormats{
		Text:  append([]string(nil), textExtensions...),
		Audio: append([]string(nil), audioExtensions...),
	}
}

func (f SupportedFormats) String() string {
	return fmt.Sprintf("Text: %s; Audio: %s", strings.Join(f.Text, ", "), strings.Join(f.Audio, ", "))
}

// DetectFileType classifies an upload by extension, MIME type and, as a last
// resort, by content.
func DetectFileType(u *models.Upload) models.FileType {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	mime := strings.ToLower(strings.TrimSpace(strings.Split(u.MimeType, ";")[0]))

	switch {
	case contains(binaryExtensions, ext):
		return models.FileTypeUnknown
	case contains(textMimeTypes, mime):
		return models.FileTypeText
	case contains(audioMimeTypes, mime):
		return models.FileTypeAudio
	case contains(textExtensions, ext):
		return models.FileTypeText
	case contains(audioExtensions, ext):
		return models.FileTypeAudio
	case strings.HasPrefix(mime, "text/"):
		return models.FileTypeText
	case LooksLikeText(u.Data):
		return models.FileTypeText
	}
	return models.FileTypeUnknown
}

// LooksLikeText reports whether more than 80% of the first KiB is printable
// ASCII or common whitespace. Samples under 50 bytes never qualify.
func LooksLikeText(data []byte) bool {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if len(sample) < 50 {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.8
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
