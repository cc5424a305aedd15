package launcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const link = "https://wa.me/2348056623864?text=Hello%0AWorld"

func TestBrowserOpen(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"linux", "xdg-open", []string{link}},
		{"darwin", "open", []string{link}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", link}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			var gotName string
			var gotArgs []string
			b := Browser{goos: tt.goos, run: func(
				_ context.Context, name string, args ...string,
			) error {
				gotName, gotArgs = name, args
				return nil
			}}

			require.NoError(t, b.Open(t.Context(), link))
			assert.Equal(t, tt.name, gotName)
			assert.Equal(t, tt.args, gotArgs)
		})
	}

	t.Run("CommandFails", func(t *testing.T) {
		errExec := errors.New("exec: not found")
		b := Browser{goos: "linux", run: func(context.Context, string, ...string) error {
			return errExec
		}}
		assert.ErrorIs(t, b.Open(t.Context(), link), errExec)
	})

	t.Run("NotHTTP", func(t *testing.T) {
		b := Browser{goos: "linux", run: func(context.Context, string, ...string) error {
			t.Fatal("must not run")
			return nil
		}}
		assert.ErrorIs(t, b.Open(t.Context(), "file:///etc/passwd"), ErrInvalidLink)
	})
}

func TestRelayOpen(t *testing.T) {
	r := NewRelay()
	assert.NoError(t, r.Open(t.Context(), link))
	assert.ErrorIs(t, r.Open(t.Context(), "javascript:alert(1)"), ErrInvalidLink)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, r.Open(ctx, link), context.Canceled)
}
