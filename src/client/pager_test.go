package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/services"
)

// pagedServer serves a fixed number of full pages per month.
func pagedServer(t *testing.T, pageSize, fullPages int) *Client {
	t.Helper()
	return newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		var rows []models.ExpenseRecord
		if page <= fullPages {
			for i := 0; i < pageSize; i++ {
				rows = append(rows, models.ExpenseRecord{ID: int64(page*100 + i), Amount: 10})
			}
		}
		json.NewEncoder(w).Encode(services.ExpensePage{
			Expenses:    rows,
			Page:        page,
			PageSize:    pageSize,
			HasNextPage: page < fullPages,
		})
	}))
}

func TestPagerMonthNavigation(t *testing.T) {
	p := NewExpensePager(nil, 2025, 1)

	t.Run("page resets on month change", func(t *testing.T) {
		p.NextPage()
		p.NextPage()
		if p.Page() != 3 {
			t.Fatalf("page = %d, want 3", p.Page())
		}
		p.NextMonth()
		if p.Page() != 1 {
			t.Errorf("page = %d after month change, want 1", p.Page())
		}
	})

	t.Run("wraps december to january", func(t *testing.T) {
		p.SetMonth(2025, 12)
		p.NextMonth()
		if p.Year() != 2026 || p.Month() != 1 {
			t.Errorf("got %d-%d, want 2026-1", p.Year(), p.Month())
		}
	})

	t.Run("wraps january to december", func(t *testing.T) {
		p.SetMonth(2025, 1)
		p.PrevMonth()
		if p.Year() != 2024 || p.Month() != 12 {
			t.Errorf("got %d-%d, want 2024-12", p.Year(), p.Month())
		}
	})

	t.Run("setting the same month keeps the page", func(t *testing.T) {
		p.SetMonth(2024, 12)
		p.NextPage()
		p.SetMonth(2024, 12)
		if p.Page() != 2 {
			t.Errorf("page = %d, want 2", p.Page())
		}
	})
}

func TestPagerEndOfData(t *testing.T) {
	c := pagedServer(t, 2, 2) // pages 1 and 2 are full, page 3 is empty
	p := NewExpensePager(c, 2025, 1)
	ctx := context.Background()

	page1, err := p.Fetch(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page1.Expenses) != 2 || !p.HasNextPage() {
		t.Fatalf("expected full first page with next, got %d rows next=%v", len(page1.Expenses), p.HasNextPage())
	}

	p.NextPage()
	if _, err := p.Fetch(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HasNextPage() {
		t.Error("expected no next page after the last full page")
	}

	// NextPage refuses to advance past the end.
	p.NextPage()
	if p.Page() != 2 {
		t.Errorf("page = %d, want 2", p.Page())
	}

	// Moving month re-enables paging.
	p.NextMonth()
	if !p.HasNextPage() || p.Page() != 1 {
		t.Errorf("month change should reset paging state, page=%d next=%v", p.Page(), p.HasNextPage())
	}
}

func TestPagerSupersededFetch(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var startOnce sync.Once

	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The page-1 request stalls until released; later ones answer
		// immediately.
		if r.URL.Query().Get("page") == "1" {
			startOnce.Do(func() { close(started) })
			<-block
		}
		json.NewEncoder(w).Encode(services.ExpensePage{
			Expenses: []models.ExpenseRecord{{ID: 1, Amount: 5}},
			Page:     1,
		})
	}))
	p := NewExpensePager(c, 2025, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = p.Fetch(context.Background())
	}()

	// Wait for the first fetch to reach the server, then issue a newer
	// fetch for page 2 while it is stalled.
	<-started
	p.NextPage()
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error from newer fetch: %v", err)
	}

	close(block)
	wg.Wait()

	if !errors.Is(firstErr, ErrSuperseded) {
		t.Errorf("stale fetch must return ErrSuperseded, got %v", firstErr)
	}
}

func TestPagerMonthChangeSupersedesFetch(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var startOnce sync.Once

	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The January request stalls until released and comes back empty,
		// which would disable paging if it were allowed to publish.
		if r.URL.Query().Get("month") == "1" {
			startOnce.Do(func() { close(started) })
			<-block
		}
		json.NewEncoder(w).Encode(services.ExpensePage{Page: 1})
	}))
	p := NewExpensePager(c, 2025, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	var staleErr error
	go func() {
		defer wg.Done()
		_, staleErr = p.Fetch(context.Background())
	}()

	// Navigate away while the January fetch is stalled, then release it.
	<-started
	p.NextMonth()
	close(block)
	wg.Wait()

	if !errors.Is(staleErr, ErrSuperseded) {
		t.Errorf("fetch outlived by a month change must return ErrSuperseded, got %v", staleErr)
	}
	if !p.HasNextPage() {
		t.Error("stale response overwrote the reset hasNextPage flag")
	}
	if p.Year() != 2025 || p.Month() != 2 || p.Page() != 1 {
		t.Errorf("position = %d-%d page %d, want 2025-2 page 1", p.Year(), p.Month(), p.Page())
	}
}
