package client

import (
	"context"
	"errors"
	"sync"

	"github.com/username/finboard/backend/src/services"
	"github.com/username/finboard/backend/src/utils"
)

// ErrSuperseded is returned by Fetch when a newer fetch was issued before
// this one finished. The caller should drop the result; the newest fetch
// carries the state the view should show.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// ExpensePager walks the expense table one (year, month, page) at a time.
// Month navigation wraps at year boundaries and always resets to page 1.
// Each Fetch cancels the previous in-flight request and carries a sequence
// number so only the last-issued fetch can publish its result; a month
// change supersedes an in-flight fetch the same way.
type ExpensePager struct {
	client *Client

	mu          sync.Mutex
	year        int
	month       int
	page        int
	hasNextPage bool
	seq         uint64
	cancel      context.CancelFunc
}

func NewExpensePager(c *Client, year, month int) *ExpensePager {
	return &ExpensePager{
		client:      c,
		year:        year,
		month:       month,
		page:        1,
		hasNextPage: true,
	}
}

func (p *ExpensePager) Year() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.year
}

func (p *ExpensePager) Month() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.month
}

func (p *ExpensePager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// HasNextPage reports whether the last fetched page suggested more data.
// It is optimistic before the first fetch.
func (p *ExpensePager) HasNextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNextPage
}

// Fetch loads the current (year, month, page). If another Fetch is issued
// while this one is in flight, the older one is cancelled and returns
// ErrSuperseded even if its response arrived.
func (p *ExpensePager) Fetch(ctx context.Context) (*services.ExpensePage, error) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.seq++
	seq := p.seq
	year, month, page := p.year, p.month, p.page
	p.mu.Unlock()

	result, err := p.client.Expenses(fetchCtx, year, month, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	// An empty page means we ran past the end; the next-page control
	// stays disabled until the position changes.
	p.hasNextPage = len(result.Expenses) > 0 && result.HasNextPage
	return result, nil
}

// NextPage advances within the month. It refuses to run past the end once
// a fetch has shown there is no further page.
func (p *ExpensePager) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasNextPage {
		p.page++
	}
}

func (p *ExpensePager) PrevPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page > 1 {
		p.page--
	}
}

// NextMonth moves forward one month, wrapping December into January of the
// next year. The page position never survives a month change.
func (p *ExpensePager) NextMonth() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.year, p.month = utils.NextMonth(p.year, p.month)
	p.resetPosition()
}

// PrevMonth moves back one month, wrapping January into December of the
// previous year.
func (p *ExpensePager) PrevMonth() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.year, p.month = utils.PrevMonth(p.year, p.month)
	p.resetPosition()
}

// SetMonth jumps directly to a month.
func (p *ExpensePager) SetMonth(year, month int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if year == p.year && month == p.month {
		return
	}
	p.year, p.month = year, month
	p.resetPosition()
}

// resetPosition moves back to page 1 and obsoletes whatever fetch is in
// flight, so a response issued for the old month cannot publish its rows
// or end-of-data flag into the new one.
func (p *ExpensePager) resetPosition() {
	p.page = 1
	p.hasNextPage = true
	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
