package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeTooLarge, http.StatusRequestEntityTooLarge},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(E(tc.code, "op", "msg", nil)))
		})
	}
}

func TestHTTPStatus_WrappedAndSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", E(CodeNotFound, "JobService.Get", "Job not found", nil))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestSafeMessage(t *testing.T) {
	assert.Equal(t, "File system error", SafeMessage(E(CodeInternal, "NoteWriter.Save", "File system error", errors.New("disk full"))))
	assert.Equal(t, "Internal Server Error", SafeMessage(errors.New("boom")))
}

func TestAppErrorFormatting(t *testing.T) {
	inner := errors.New("disk full")
	err := E(CodeInternal, "NoteWriter.Save", "File system error", inner)
	assert.Equal(t, "NoteWriter.Save: File system error: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeNotFound))
}

func TestAppErrorFormatting_Partial(t *testing.T) {
	assert.Equal(t, "JobService.Get: not found", (&AppError{Op: "JobService.Get", Err: ErrNotFound}).Error())
	assert.Equal(t, "Job not found", (&AppError{Message: "Job not found"}).Error())
	assert.Equal(t, "error", (&AppError{}).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeTimeout, CodeOf(fmt.Errorf("wrap: %w", E(CodeTimeout, "op", "msg", nil))))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
