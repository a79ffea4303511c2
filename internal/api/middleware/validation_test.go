package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/scribely/internal/logger"
)

func init() { gin.SetMode(gin.TestMode) }

func transcriptRouter() *gin.Engine {
	r := gin.New()
	r.POST("/process", ValidateTranscript(logger.Discard()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transcript": c.GetString(TranscriptKey)})
	})
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	s, _ := body["error"].(string)
	return s
}

func TestValidateTranscript(t *testing.T) {
	long := strings.Repeat("a", MaxTranscriptChars+1)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "Transcript is required"},
		{"absent", `{}`, "Transcript is required"},
		{"null", `{"transcript":null}`, "Transcript is required"},
		{"empty string", `{"transcript":""}`, "Transcript is required"},
		{"false", `{"transcript":false}`, "Transcript is required"},
		{"zero", `{"transcript":0}`, "Transcript is required"},
		{"number", `{"transcript":42}`, "Transcript must be a string"},
		{"true", `{"transcript":true}`, "Transcript must be a string"},
		{"object", `{"transcript":{"a":1}}`, "Transcript must be a string"},
		{"blank", `{"transcript":"  \n\t "}`, "Transcript cannot be empty"},
		{"too long", `{"transcript":"` + long + `"}`, "Transcript is too long (max 10,000 characters)"},
		{"malformed", `{"transcript":`, "Invalid JSON body"},
	}
	r := transcriptRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, "/process", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, errorOf(t, w))
		})
	}
}

func TestValidateTranscript_Accepts(t *testing.T) {
	r := transcriptRouter()

	atLimit := strings.Repeat("é", MaxTranscriptChars)
	for _, text := range []string{"buy milk", atLimit} {
		w := postJSON(r, "/process", `{"transcript":"`+text+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"transcript":"`+text+`"}`, w.Body.String())
	}
}
