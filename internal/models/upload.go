package models

type FileType string

const (
	FileTypeText    FileType = "text"
	FileTypeAudio   FileType = "audio"
	FileTypeUnknown FileType = "unknown"
)

// Upload is a single multipart file held in memory. Size is bounded by the
// intake middleware before an Upload is ever built.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Extraction is the text pulled out of an uploaded file.
type Extraction struct {
	Text     string
	FileType FileType
	Method   string
}
