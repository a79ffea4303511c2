package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/services"
)

const (
	// UploadKey holds the *models.Upload in the gin context when a file was sent.
	UploadKey = "upload"

	fileField       = "file"
	transcriptField = "transcript"

	// room for the transcript field and multipart framing on top of the file
	formOverhead = 1 << 20
)

type formatsError struct {
	Error            string                    `json:"error"`
	SupportedFormats services.SupportedFormats `json:"supportedFormats"`
}

func abortWithFormats(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, formatsError{Error: msg, SupportedFormats: services.Formats()})
}

func tooLargeMessage(maxBytes int64) string {
	if maxBytes < 1<<20 {
		return fmt.Sprintf("File is too large. Maximum size is %dKB", maxBytes>>10)
	}
	return fmt.Sprintf("File is too large. Maximum size is %dMB", maxBytes>>20)
}

// ValidateFileOrTranscript guards POST /process-file. It bounds the body,
// parses the multipart form and stores the upload and transcript for the
// handler. A JSON body with a transcript field is accepted too.
func ValidateFileOrTranscript(maxBytes int64, l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)

		ct, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
		var (
			transcript any
			fh         *multipart.FileHeader
		)

		switch ct {
		case "multipart/form-data":
			form, err := c.MultipartForm()
			if err != nil {
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					l.WithField("limit", maxBytes).Warn("validation failed: body too large")
					abortError(c, http.StatusRequestEntityTooLarge, tooLargeMessage(maxBytes))
					return
				}
				l.WithError(err).Warn("validation failed: malformed multipart body")
				abortError(c, http.StatusBadRequest, "Malformed multipart request")
				return
			}
			defer func() { _ = form.RemoveAll() }()

			for field := range form.File {
				if field != fileField {
					abortError(c, http.StatusBadRequest, `Unexpected file field. Use "file" as the field name`)
					return
				}
			}
			switch files := form.File[fileField]; len(files) {
			case 0:
			case 1:
				fh = files[0]
			default:
				abortError(c, http.StatusBadRequest, "Too many files. Only 1 file is allowed")
				return
			}

			if _, ok := form.Value[fileField]; ok && fh == nil {
				// a part without a filename is parsed as a plain value
				abortError(c, http.StatusBadRequest, "File must have a valid filename")
				return
			}

			switch vals := form.Value[transcriptField]; len(vals) {
			case 0:
			case 1:
				transcript = vals[0]
			default:
				abortError(c, http.StatusBadRequest, "Transcript must be a string")
				return
			}

		case "application/json":
			var req transcriptRequest
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				abortError(c, http.StatusBadRequest, "Invalid JSON body")
				return
			}
			transcript = req.Transcript
		}

		if fh == nil && isFalsy(transcript) {
			l.Warn("validation failed: neither file nor transcript provided")
			abortWithFormats(c, "Either a file or transcript text is required")
			return
		}
		if s, ok := transcript.(string); fh == nil && ok && strings.TrimSpace(s) == "" {
			l.Warn("validation failed: neither file nor valid transcript provided")
			abortWithFormats(c, "Either a file or transcript text is required")
			return
		}

		if !isFalsy(transcript) {
			text, msg := checkTranscript(transcript, MaxFileTranscriptChars, "50,000")
			if msg != "" {
				l.WithField("reason", msg).Warn("validation failed")
				abortError(c, http.StatusBadRequest, msg)
				return
			}
			c.Set(TranscriptKey, text)
		}

		if fh != nil {
			up, status, msg := readUpload(fh, maxBytes)
			if msg != "" {
				l.WithFields(logrus.Fields{"filename": fh.Filename, "reason": msg}).Warn("validation failed")
				if status == http.StatusBadRequest && msg == "File must have a valid extension" {
					abortWithFormats(c, msg)
					return
				}
				abortError(c, status, msg)
				return
			}
			c.Set(UploadKey, up)
		}

		c.Next()
	}
}

func readUpload(fh *multipart.FileHeader, maxBytes int64) (*models.Upload, int, string) {
	if fh.Filename == "" {
		return nil, http.StatusBadRequest, "File must have a valid filename"
	}
	if fh.Size == 0 {
		return nil, http.StatusBadRequest, "File cannot be empty"
	}
	if strings.LastIndex(fh.Filename, ".") <= 0 {
		return nil, http.StatusBadRequest, "File must have a valid extension"
	}
	if fh.Size > maxBytes {
		return nil, http.StatusRequestEntityTooLarge, tooLargeMessage(maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, "Malformed multipart request"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusBadRequest, "Malformed multipart request"
	}
	return &models.Upload{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
	}, 0, ""
}
