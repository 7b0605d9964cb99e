// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package payload admits and reads conversion sources. Admission enforces
// a size ceiling and a content-type/extension allow-list before anything
// reaches the queue; reading yields either decoded text or raw bytes plus
// a content type, depending on what the source holds.
// Implements: prd002-queue R3 (admission); docs/ARCHITECTURE § Payloads.
package payload

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/format-engine/pkg/types"
)

// MaxSize is the admission ceiling for a single payload: 5 MiB. Files
// above it are rejected regardless of declared content type (R3.1).
const MaxSize = 5 * 1024 * 1024

var (
	// ErrTooLarge indicates a payload above the MaxSize ceiling.
	ErrTooLarge = errors.New("payload exceeds size limit")

	// ErrUnsupportedType indicates a payload whose declared content type
	// and filename extension both fall outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedTypes is the content-type allow-list: images, PDF,
// plain/structured text, and office documents (R3.2).
var allowedTypes = map[string]bool{
	"image/png":          true,
	"image/jpeg":         true,
	"image/webp":         true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// textExtensions maps extensions that are read as literal text. Anything
// admitted but not listed here travels as an encoded byte blob.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".csv": true,
	".tsv": true, ".json": true, ".xml": true, ".yaml": true,
	".yml": true, ".html": true, ".htm": true, ".sql": true,
	".tex": true, ".log": true,
}

// binaryExtensions lists admitted extensions that are not textual.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".gif": true, ".pdf": true, ".doc": true, ".docx": true,
}

// extensionContentTypes supplies a content type when the declared one is
// empty and the extension is admitted.
var extensionContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Admit validates a candidate against the two independent admission rules:
// the size ceiling and the type allow-list. The rules are checked in that
// order; size violations win even for allowed types. When the declared
// content type is empty the extension alone decides (R3.3).
func Admit(name string, size int64, declaredType string) error {
	if size > MaxSize {
		return fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, name, size, MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(name))
	extAllowed := textExtensions[ext] || binaryExtensions[ext]

	if declaredType == "" {
		if !extAllowed {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		return nil
	}

	// Strip any parameters from the declared type (e.g. "; charset=utf-8").
	base := strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0])
	if allowedTypes[strings.ToLower(base)] || strings.HasPrefix(base, "text/") || extAllowed {
		return nil
	}
	return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, name, base)
}

// Read loads a file into a Payload after admission. Textual sources come
// back with Text set; binary sources with Data and a content type. The
// operation blocks until the file is fully read or fails (there is no
// partial result).
func Read(path string) (types.Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Payload{}, fmt.Errorf("stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	if err := Admit(name, info.Size(), ""); err != nil {
		return types.Payload{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Payload{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return FromBytes(name, data), nil
}

// FromBytes builds a Payload from in-memory content, deciding the
// transport the same way Read does. Callers are expected to have run
// Admit already; FromBytes never rejects.
func FromBytes(name string, data []byte) types.Payload {
	ext := strings.ToLower(filepath.Ext(name))

	if textExtensions[ext] && utf8.Valid(data) {
		return types.Payload{
			Name:        name,
			Size:        int64(len(data)),
			ContentType: "text/plain",
			Text:        string(data),
		}
	}

	ct := extensionContentTypes[ext]
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return types.Payload{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: ct,
		Data:        data,
	}
}

// FromText wraps pasted text in a Payload for single-text mode.
func FromText(text string) types.Payload {
	return types.Payload{
		Size:        int64(len(text)),
		ContentType: "text/plain",
		Text:        text,
	}
}
