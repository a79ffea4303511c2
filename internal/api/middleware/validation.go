package middleware

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/models"
)

const (
	// TranscriptKey holds the validated transcript string in the gin context.
	TranscriptKey = "transcript"

	MaxTranscriptChars     = 10000
	MaxFileTranscriptChars = 50000
)

type transcriptRequest struct {
	Transcript any `json:"transcript"`
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
}

// ValidateTranscript guards POST /process. The checks run in a fixed order:
// missing, wrong type, blank, too long.
func ValidateTranscript(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transcriptRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			l.WithError(err).Warn("validation failed: malformed json body")
			abortError(c, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		text, msg := checkTranscript(req.Transcript, MaxTranscriptChars, "10,000")
		if msg != "" {
			l.WithField("reason", msg).Warn("validation failed")
			abortError(c, http.StatusBadRequest, msg)
			return
		}

		c.Set(TranscriptKey, text)
		c.Next()
	}
}

// checkTranscript returns the transcript or the client-facing reason it was
// rejected. absent, null, "", false and 0 all count as missing.
func checkTranscript(v any, limit int, limitLabel string) (string, string) {
	if isFalsy(v) {
		return "", "Transcript is required"
	}
	s, ok := v.(string)
	if !ok {
		return "", "Transcript must be a string"
	}
	return checkTranscriptText(s, limit, limitLabel)
}

func checkTranscriptText(s string, limit int, limitLabel string) (string, string) {
	if strings.TrimSpace(s) == "" {
		return "", "Transcript cannot be empty"
	}
	if utf8.RuneCountInString(s) > limit {
		return "", "Transcript is too long (max " + limitLabel + " characters)"
	}
	return s, ""
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0
	}
	return false
}
