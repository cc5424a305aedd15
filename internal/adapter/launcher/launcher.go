// Package launcher hands checkout links to the messaging channel.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/niksmo/farmstore/internal/core/port"
)

var (
	ErrInvalidLink = errors.New("invalid link")
)

var (
	_ port.LinkOpener = (*Browser)(nil)
	_ port.LinkOpener = (*Relay)(nil)
)

type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// A Browser opens links with the desktop default handler.
type Browser struct {
	goos string
	run  runFunc
}

func NewBrowser() Browser {
	return Browser{goos: runtime.GOOS, run: runCommand}
}

func (b Browser) Open(ctx context.Context, link string) error {
	const op = "Browser.Open"

	if err := checkLink(link); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	name, args := openCommand(b.goos, link)
	if err := b.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %s: %w", op, name, err)
	}
	slog.Debug("link opened", "op", op, "cmd", name)
	return nil
}

func openCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}

// A Relay accepts links that the caller opens itself, as HTTP clients do
// with the link in the checkout response.
type Relay struct{}

func NewRelay() Relay {
	return Relay{}
}

func (Relay) Open(ctx context.Context, link string) error {
	const op = "Relay.Open"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkLink(link); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Debug("link relayed to client", "op", op)
	return nil
}

func checkLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidLink, u.Scheme)
	}
	return nil
}
