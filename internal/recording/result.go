package recording

import "github.com/yoockh/scribely/internal/models"

// UploadResult is exactly one of UploadSuccess, LocalSave or UploadError.
type UploadResult interface {
	isUploadResult()
}

// UploadSuccess means the server accepted the recording, either for
// background processing or with a finished note.
type UploadSuccess struct {
	Response *models.ProcessResponse
}

// LocalSave means the recording was not uploaded and a copy was written to
// FilePath instead.
type LocalSave struct {
	FilePath string
}

// UploadError means neither the upload nor the local copy succeeded.
type UploadError struct {
	Message string
	Cause   error
}

func (UploadSuccess) isUploadResult() {}
func (LocalSave) isUploadResult()     {}
func (UploadError) isUploadResult()   {}

func (e UploadError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e UploadError) Unwrap() error { return e.Cause }
