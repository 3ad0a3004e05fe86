package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liker/internal/logger"
)

func TestWaitErr(t *testing.T) {
	live := context.Background()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	other := errors.New("target closed")

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want error
	}{
		{"Wait expired", live, context.DeadlineExceeded, ErrElementNotFound},
		{"Wrapped wait expiry", live, fmt.Errorf("element: %w", context.DeadlineExceeded), ErrElementNotFound},
		{"Caller cancelled", cancelled, context.Canceled, context.Canceled},
		{"Caller deadline passed", expired, context.DeadlineExceeded, context.DeadlineExceeded},
		{"Other error", live, other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, waitErr(tt.ctx, tt.err), tt.want)
		})
	}
}

const rodTestPage = `<!doctype html>
<html><body>
<form>
  <input name="uid" placeholder="Enter UID">
  <button type="button" onclick="document.title='claimed'">Send 1/2</button>
</form>
</body></html>`

// TestRodPageFind drives a real headless browser, so it only runs where one
// is installed.
func TestRodPageFind(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a browser")
	}
	acquirer := NewRodAcquirer(LaunchOptions{
		Headless:       true,
		ViewportWidth:  800,
		ViewportHeight: 600,
		LaunchTimeout:  30 * time.Second,
		Args:           []string{"no-sandbox"},
	}, logger.Nop())
	if _, err := acquirer.ProbeBinary(); err != nil {
		t.Skipf("no browser available: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(rodTestPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	handle, err := acquirer.Acquire(ctx)
	require.NoError(t, err)
	defer handle.Close()

	page, err := handle.NewPage(ctx)
	require.NoError(t, err)
	require.NoError(t, page.Navigate(ctx, srv.URL, 100*time.Millisecond))

	t.Run("Immediate text match", func(t *testing.T) {
		el, err := page.Find(ctx, Selector{CSS: "button", Text: "send 1/2"}, 0)
		require.NoError(t, err)
		require.NoError(t, el.Click(ctx))
	})

	t.Run("Immediate text miss", func(t *testing.T) {
		_, err := page.Find(ctx, Selector{CSS: "button", Text: "Claim"}, 0)
		assert.ErrorIs(t, err, ErrElementNotFound)
	})

	t.Run("Timed match", func(t *testing.T) {
		el, err := page.Find(ctx, Selector{CSS: `input[name="uid"]`}, time.Second)
		require.NoError(t, err)
		require.NoError(t, el.Type(ctx, "123456789"))
	})

	t.Run("Timed miss", func(t *testing.T) {
		start := time.Now()
		_, err := page.Find(ctx, Selector{CSS: "button", Text: "Claim"}, 200*time.Millisecond)
		assert.ErrorIs(t, err, ErrElementNotFound)
		assert.Less(t, time.Since(start), 10*time.Second)
	})

	t.Run("Timed lookup honours caller cancel", func(t *testing.T) {
		short, cancelShort := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancelShort()
		_, err := page.Find(short, Selector{CSS: "#missing"}, time.Minute)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrElementNotFound)
	})
}
