// Package browsertest provides scripted in-memory browser fakes.
package browsertest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"liker/internal/browser"
)

// Acquirer hands out Handle, or fails with Err.
type Acquirer struct {
	Handle *Handle
	Err    error

	calls atomic.Int32
}

func (a *Acquirer) Acquire(ctx context.Context) (browser.Handle, error) {
	a.calls.Add(1)
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Handle, nil
}

func (a *Acquirer) Calls() int {
	return int(a.calls.Load())
}

type Handle struct {
	Page     *Page
	PageErr  error
	CloseErr error

	closes atomic.Int32
}

func NewHandle(page *Page) *Handle {
	return &Handle{Page: page}
}

func (h *Handle) NewPage(ctx context.Context) (browser.Page, error) {
	if h.PageErr != nil {
		return nil, h.PageErr
	}
	return h.Page, nil
}

func (h *Handle) Close() error {
	h.closes.Add(1)
	return h.CloseErr
}

// Closes reports how many times Close was called.
func (h *Handle) Closes() int {
	return int(h.closes.Load())
}

// Page serves a queue of contents: each Content call pops the next one and
// the last one sticks.
type Page struct {
	NavigateErr error
	ContentErr  error
	// NavigateBlocks makes Navigate wait for ctx to end.
	NavigateBlocks bool

	mu       sync.Mutex
	contents []string
	elements map[browser.Selector]*Element
	headers  map[string]string
	visited  []string
	lookups  []browser.Selector
}

func NewPage(contents ...string) *Page {
	return &Page{
		contents: contents,
		elements: make(map[browser.Selector]*Element),
	}
}

// WithElement registers el as the match for sel.
func (p *Page) WithElement(sel browser.Selector, el *Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	el.page = p
	p.elements[sel] = el
	return p
}

func (p *Page) SetContent(contents ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contents = contents
}

func (p *Page) SetExtraHeaders(headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.headers = headers
	return nil
}

func (p *Page) Headers() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers
}

func (p *Page) Navigate(ctx context.Context, url string, idle time.Duration) error {
	if p.NavigateBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	p.visited = append(p.visited, url)
	p.mu.Unlock()
	return p.NavigateErr
}

func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

func (p *Page) Content(ctx context.Context) (string, error) {
	if p.ContentErr != nil {
		return "", p.ContentErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.contents) == 0 {
		return "", nil
	}
	current := p.contents[0]
	if len(p.contents) > 1 {
		p.contents = p.contents[1:]
	}
	return current, nil
}

func (p *Page) Find(ctx context.Context, sel browser.Selector, wait time.Duration) (browser.Element, error) {
	p.mu.Lock()
	p.lookups = append(p.lookups, sel)
	el, ok := p.elements[sel]
	p.mu.Unlock()
	if !ok {
		return nil, browser.ErrElementNotFound
	}
	return el, nil
}

// Lookups lists every selector Find was asked for, in order.
func (p *Page) Lookups() []browser.Selector {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]browser.Selector(nil), p.lookups...)
}

type Element struct {
	TypeErr  error
	ClickErr error
	// AfterClick replaces the page contents on a successful click.
	AfterClick []string

	page   *Page
	mu     sync.Mutex
	typed  []string
	clicks int
}

func (e *Element) Type(ctx context.Context, text string) error {
	if e.TypeErr != nil {
		return e.TypeErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typed = append(e.typed, text)
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.mu.Lock()
	e.clicks++
	e.mu.Unlock()
	if e.AfterClick != nil && e.page != nil {
		e.page.SetContent(e.AfterClick...)
	}
	return nil
}

func (e *Element) Typed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.typed...)
}

func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}
