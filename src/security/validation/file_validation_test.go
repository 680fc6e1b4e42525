package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/username/finboard/backend/src/logger"
)

func init() {
	logger.InitLogger("error")
}

func TestValidateClientContentType(t *testing.T) {
	for _, ct := range []string{"text/csv", "TEXT/CSV", "application/csv", "text/plain; charset=utf-8"} {
		if err := ValidateClientContentType(ct); err != nil {
			t.Errorf("%q should be allowed: %v", ct, err)
		}
	}
	for _, ct := range []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "image/png", ""} {
		if err := ValidateClientContentType(ct); err == nil {
			t.Errorf("%q should be rejected", ct)
		}
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	t.Run("csv text passes and rewinds", func(t *testing.T) {
		r := strings.NewReader("Date,Amount\n2025-01-01,10\n")
		if _, err := ValidateFileContentByMagicBytes(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The parser must see the file from the start.
		buf := make([]byte, 4)
		if n, _ := r.Read(buf); string(buf[:n]) != "Date" {
			t.Errorf("reader not rewound, got %q", buf[:n])
		}
	})

	t.Run("png rejected", func(t *testing.T) {
		png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
		if _, err := ValidateFileContentByMagicBytes(bytes.NewReader(png)); err == nil {
			t.Error("expected rejection for PNG content")
		}
	})

	t.Run("nil file", func(t *testing.T) {
		if _, err := ValidateFileContentByMagicBytes(nil); err == nil {
			t.Error("expected error for nil file")
		}
	})
}

func TestSanitizers(t *testing.T) {
	if got := SanitizeForFormulaInjection("=SUM(A1:A9)"); got != "'=SUM(A1:A9)" {
		t.Errorf("formula not neutralized: %q", got)
	}
	if got := SanitizeForFormulaInjection("Groceries"); got != "Groceries" {
		t.Errorf("plain text must pass through: %q", got)
	}
	if got := StripUnprintable("café\x00\x07 bill"); got != "café bill" {
		t.Errorf("unprintables not stripped: %q", got)
	}
}
