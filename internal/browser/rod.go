package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type rodHandle struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	width    int
	height   int
}

func (h *rodHandle) NewPage(ctx context.Context) (Page, error) {
	page, err := h.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             h.width,
		Height:            h.height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	return &rodPage{page: page}, nil
}

func (h *rodHandle) Close() error {
	err := h.browser.Close()
	if err != nil {
		h.launcher.Kill()
	}
	h.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) SetExtraHeaders(headers map[string]string) error {
	if len(headers) == 0 {
		return nil
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	dict := make([]string, 0, len(headers)*2)
	for _, name := range names {
		dict = append(dict, name, headers[name])
	}

	_, err := p.page.SetExtraHeaders(dict)
	return err
}

func (p *rodPage) Navigate(ctx context.Context, url string, idle time.Duration) error {
	page := p.page.Context(ctx)

	// Must be armed before navigating so early requests are counted.
	waitIdle := page.WaitRequestIdle(idle, nil, nil, nil)

	if err := page.Navigate(url); err != nil {
		return err
	}
	waitIdle()

	return ctx.Err()
}

func (p *rodPage) Content(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Find(ctx context.Context, sel Selector, wait time.Duration) (Element, error) {
	page := p.page.Context(ctx)

	if wait <= 0 {
		var (
			has bool
			el  *rod.Element
			err error
		)
		if sel.Text != "" {
			has, el, err = page.HasR(sel.CSS, sel.textPattern())
		} else {
			has, el, err = page.Has(sel.CSS)
		}
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, ErrElementNotFound
		}
		return &rodElement{el: el}, nil
	}

	waiting := page.Timeout(wait)
	var (
		el  *rod.Element
		err error
	)
	if sel.Text != "" {
		el, err = waiting.ElementR(sel.CSS, sel.textPattern())
	} else {
		el, err = waiting.Element(sel.CSS)
	}
	if err != nil {
		waiting.CancelTimeout()
		return nil, waitErr(ctx, err)
	}

	return &rodElement{el: el.CancelTimeout()}, nil
}

// waitErr maps the expiry of a per-lookup wait to ErrElementNotFound. Expiry
// of the caller's own ctx is passed through.
func waitErr(ctx context.Context, err error) error {
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return ErrElementNotFound
	}
	return err
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Type(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}
