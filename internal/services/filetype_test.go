package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoockh/scribely/internal/models"
)

func TestDetectFileType(t *testing.T) {
	prose := []byte(string(bytes.Repeat([]byte("plain words and sentences. "), 4)))
	binary := bytes.Repeat([]byte{0x00, 0xff, 0x10, 0x02}, 64)

	cases := []struct {
		name string
		up   models.Upload
		want models.FileType
	}{
		{"m4a by mime", models.Upload{Filename: "rec.m4a", MimeType: "audio/m4a"}, models.FileTypeAudio},
		{"m4a by extension", models.Upload{Filename: "rec.m4a", MimeType: "application/octet-stream"}, models.FileTypeAudio},
		{"markdown by mime", models.Upload{Filename: "n", MimeType: "text/markdown; charset=utf-8"}, models.FileTypeText},
		{"txt by extension", models.Upload{Filename: "n.TXT"}, models.FileTypeText},
		{"pdf rejected despite text mime", models.Upload{Filename: "cv.pdf", MimeType: "text/plain"}, models.FileTypeUnknown},
		{"generic text mime", models.Upload{Filename: "notes.log", MimeType: "text/x-log"}, models.FileTypeText},
		{"content sniffed text", models.Upload{Filename: "notes.log", Data: prose}, models.FileTypeText},
		{"binary content", models.Upload{Filename: "blob.dat", Data: binary}, models.FileTypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFileType(&tc.up))
		})
	}
}

func TestLooksLikeText(t *testing.T) {
	assert.False(t, LooksLikeText([]byte("short text")), "under 50 bytes is never text")
	assert.True(t, LooksLikeText(bytes.Repeat([]byte("abc def\n"), 20)))

	mixed := append(bytes.Repeat([]byte("a"), 70), bytes.Repeat([]byte{0x01}, 30)...)
	assert.False(t, LooksLikeText(mixed), "70%% printable is below the threshold")
}

func TestFormatsString(t *testing.T) {
	s := Formats().String()
	assert.Contains(t, s, "Text: .txt, .md, .markdown, .text")
	assert.Contains(t, s, "Audio: .mp3")
	assert.Contains(t, s, ".m4a")
}
