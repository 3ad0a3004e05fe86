package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liker/internal/logger"
)

func newProbeAcquirer(opts LaunchOptions, existing map[string]bool, lookPath string) *RodAcquirer {
	a := NewRodAcquirer(opts, logger.Nop())
	a.fileExists = func(path string) bool { return existing[path] }
	a.lookPath = func() (string, bool) { return lookPath, lookPath != "" }
	return a
}

func TestProbeBinary(t *testing.T) {
	candidates := []string{"/usr/bin/google-chrome", "/usr/bin/chromium-browser", "/usr/bin/chromium"}

	tests := []struct {
		name     string
		explicit string
		existing map[string]bool
		lookPath string
		want     string
		wantErr  bool
	}{
		{
			name:     "Explicit path wins",
			explicit: "/opt/chrome/chrome",
			existing: map[string]bool{"/opt/chrome/chrome": true, "/usr/bin/chromium": true},
			want:     "/opt/chrome/chrome",
		},
		{
			name:     "Explicit path missing is fatal",
			explicit: "/opt/chrome/chrome",
			existing: map[string]bool{"/usr/bin/chromium": true},
			wantErr:  true,
		},
		{
			name:     "First existing candidate",
			existing: map[string]bool{"/usr/bin/chromium-browser": true, "/usr/bin/chromium": true},
			want:     "/usr/bin/chromium-browser",
		},
		{
			name:     "Falls back to rod lookup",
			existing: map[string]bool{},
			lookPath: "/snap/bin/chromium",
			want:     "/snap/bin/chromium",
		},
		{
			name:     "Nothing found",
			existing: map[string]bool{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newProbeAcquirer(LaunchOptions{BinaryPath: tt.explicit, CandidatePaths: candidates}, tt.existing, tt.lookPath)
			got, err := a.ProbeBinary()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBinaryNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAcquireWithoutBinaryIsAcquisitionError(t *testing.T) {
	a := newProbeAcquirer(LaunchOptions{CandidatePaths: []string{"/nope"}}, map[string]bool{}, "")

	handle, err := a.Acquire(context.Background())
	assert.Nil(t, handle)

	var acqErr *AcquisitionError
	require.True(t, errors.As(err, &acqErr))
	assert.Equal(t, "probe", acqErr.Op)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
}
