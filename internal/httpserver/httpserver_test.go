package httpserver

import (
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	handler := http.NewServeMux()
	srv := New(":3000", handler)

	if srv.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", srv.Addr)
	}
	if srv.Handler != handler {
		t.Error("Handler was not attached")
	}
	if srv.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want 5s", srv.ReadHeaderTimeout)
	}
}
