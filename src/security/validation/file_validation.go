package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/finboard/backend/src/logger"
)

// allowedClientContentTypes lists the client-declared MIME types accepted
// for an expense report upload. Spreadsheet formats are rejected up front;
// only CSV-ish text is allowed through to the parser.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // legacy Excel exports CSV under this type
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": false,
}

// ValidateClientContentType checks the Content-Type header declared by the
// uploading client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if allowed, exists := allowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("file type '%s' is not allowed for expense upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes sniffs the actual file content and rejects
// anything that doesn't look like text. Returns the detected type.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content sniffing: %w", err)
	}

	// Rewind so the parser sees the whole file.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])

	allowedDetected := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true, // the CSV parser rejects anything that isn't
	}
	if !allowedDetected[detected] {
		logger.L.Warn("Disallowed detected file content type", "detectedContentType", detected)
		return detected, fmt.Errorf("detected file content type '%s' is not consistent with a CSV file", detected)
	}

	logger.L.Debug("File content validated", "detectedContentType", detected)
	return detected, nil
}
