package prompt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"promptdesk/internal/models"
)

// fileDelimiterHeader separates uploaded text content from the typed prompt.
const fileDelimiterHeader = "\n\n--- Content from uploaded file ---\n"

var allowedExtensions = map[string]struct{}{
	"txt":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
}

// Recoverable file outcomes. Either one still returns the parts assembled
// so far: a rejected file never blocks an independently valid text prompt.
var (
	ErrFileNotAllowed = errors.New("file type not allowed, only .txt, .png, .jpg, .jpeg, .gif, .bmp, .webp are supported")
	ErrFileDecode     = errors.New("error processing file")
)

// Upload is an uploaded file read once from the request stream.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// AllowedFile reports whether the filename carries an accepted extension.
func AllowedFile(filename string) bool {
	ext, ok := fileExtension(filename)
	if !ok {
		return false
	}
	_, ok = allowedExtensions[ext]
	return ok
}

// Assemble combines the free-text prompt and optional upload into the
// ordered content parts sent to the model. The returned error, when
// non-nil, is a user-facing file problem; the parts remain usable.
func Assemble(text string, upload *Upload) ([]models.ContentPart, error) {
	var parts []models.ContentPart

	text = strings.TrimSpace(text)
	if text != "" {
		parts = append(parts, models.TextPart(text))
	}

	if upload == nil || upload.Filename == "" {
		return parts, nil
	}
	ext, ok := fileExtension(upload.Filename)
	if !ok {
		return parts, ErrFileNotAllowed
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return parts, ErrFileNotAllowed
	}

	if ext == "txt" {
		if !utf8.Valid(upload.Data) {
			return parts, fmt.Errorf("%w: text file is not valid UTF-8", ErrFileDecode)
		}
		parts = append(parts, models.TextPart(fileDelimiterHeader+string(upload.Data)))
		return parts, nil
	}

	mimeType := upload.MIMEType
	if mimeType == "" {
		if ext == "jpg" {
			ext = "jpeg"
		}
		mimeType = "image/" + ext
	}
	encoded := base64.StdEncoding.EncodeToString(upload.Data)
	parts = append(parts, models.BinaryPart(mimeType, encoded))
	return parts, nil
}

func fileExtension(filename string) (string, bool) {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return "", false
	}
	return strings.ToLower(filename[idx+1:]), true
}
