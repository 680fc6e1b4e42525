package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/username/finboard/backend/src/logger"
)

func init() {
	logger.InitLogger("error")
}

const validCSV = `Date,Amount,Category,Subcategory,Description
2025-01-05,1200.50,Food,Groceries,Weekly shop
2025-01-08,85.00,Transport,Fuel,Top up
15/01/2025,300,Food,Dining,Dinner out
`

func TestParseValidFile(t *testing.T) {
	p := NewExpenseCSVParser()
	records, err := p.Parse(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Amount != 1200.50 || records[0].Category != "Food" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	// dd/mm/yyyy dates are normalized to ISO
	if records[2].Date != "2025-01-15" {
		t.Errorf("expected normalized date 2025-01-15, got %q", records[2].Date)
	}
}

func TestParseHeaderValidation(t *testing.T) {
	p := NewExpenseCSVParser()

	t.Run("case and order are irrelevant", func(t *testing.T) {
		csv := "description,SUBCATEGORY,amount,category,date\nlunch,Dining,12.50,Food,2025-02-01\n"
		records, err := p.Parse(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 || records[0].Description != "lunch" {
			t.Errorf("unexpected records: %+v", records)
		}
	})

	t.Run("missing headers are all named", func(t *testing.T) {
		csv := "Date,Category,Description\n2025-01-01,Food,x\n"
		_, err := p.Parse(strings.NewReader(csv))
		var he *HeaderError
		if !errors.As(err, &he) {
			t.Fatalf("expected HeaderError, got %v", err)
		}
		if len(he.Missing) != 2 || he.Missing[0] != "Amount" || he.Missing[1] != "Subcategory" {
			t.Errorf("unexpected missing set: %v", he.Missing)
		}
		if !strings.Contains(he.Error(), "Amount") || !strings.Contains(he.Error(), "Subcategory") {
			t.Errorf("message must name the missing columns: %q", he.Error())
		}
	})

	t.Run("empty file", func(t *testing.T) {
		if _, err := p.Parse(strings.NewReader("")); err == nil {
			t.Error("expected error for empty file")
		}
	})
}

func TestParseBadRows(t *testing.T) {
	p := NewExpenseCSVParser()

	t.Run("bad amount", func(t *testing.T) {
		csv := "Date,Amount,Category,Subcategory,Description\n2025-01-01,abc,Food,Groceries,x\n"
		if _, err := p.Parse(strings.NewReader(csv)); err == nil || !strings.Contains(err.Error(), "row 2") {
			t.Errorf("expected row-numbered amount error, got %v", err)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		csv := "Date,Amount,Category,Subcategory,Description\n01-2025-05,10,Food,Groceries,x\n"
		if _, err := p.Parse(strings.NewReader(csv)); err == nil || !strings.Contains(err.Error(), "invalid date") {
			t.Errorf("expected date error, got %v", err)
		}
	})

	t.Run("blank rows are skipped", func(t *testing.T) {
		csv := "Date,Amount,Category,Subcategory,Description\n\n2025-01-01,10,Food,Groceries,x\n , , , , \n"
		records, err := p.Parse(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 record, got %d", len(records))
		}
	})
}

func TestPreview(t *testing.T) {
	p := NewExpenseCSVParser()

	var b strings.Builder
	b.WriteString("Date,Amount,Category,Subcategory,Description\n")
	for i := 0; i < 8; i++ {
		b.WriteString("2025-01-01,10,Food,Groceries,x\n")
	}
	records, err := p.Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := Preview(records); len(got) != PreviewRowCount {
		t.Errorf("expected %d preview rows, got %d", PreviewRowCount, len(got))
	}
	if got := Preview(records[:2]); len(got) != 2 {
		t.Errorf("short files preview all rows, got %d", len(got))
	}
	if got := Preview(nil); len(got) != 0 {
		t.Errorf("expected empty preview, got %d", len(got))
	}
}
