package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var errNoReadableText = errors.New("no readable text content found in file")

// ExtractText decodes an uploaded text file: UTF-8 when valid, Latin-1
// otherwise.
func ExtractText(data []byte) (string, error) {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		text = string(decoded)
	}
	text = strings.TrimPrefix(text, "\ufeff")

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errNoReadableText
	}
	return text, nil
}
