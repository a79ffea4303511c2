package stt

import (
	"context"
	"path/filepath"
	"strings"
)

// Result is the text recognised in one audio file.
type Result struct {
	Text     string
	Language string
}

// Provider is a speech-to-text backend used for uploaded audio files.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, filename string) (Result, error)
	// SupportedFormats lists extensions without the leading dot.
	SupportedFormats() []string
	MaxFileSize() int64
	IsReady() bool
	Close() error
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// Supports reports whether p accepts filename's extension.
func Supports(p Provider, filename string) bool {
	ext := Extension(filename)
	for _, f := range p.SupportedFormats() {
		if f == ext {
			return true
		}
	}
	return false
}
