// Package browser opens result URLs in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
)

// Launcher starts an external command. Tests replace it.
type Launcher func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener opens URLs with the platform's default handler.
type Opener struct {
	goos   string
	launch Launcher
}

// New returns an Opener for the current platform.
func New() *Opener {
	return &Opener{goos: runtime.GOOS, launch: startCommand}
}

// NewWithLauncher returns an Opener for goos that starts commands via launch.
func NewWithLauncher(goos string, launch Launcher) *Opener {
	return &Opener{goos: goos, launch: launch}
}

// Open validates rawURL and hands it to the system browser without waiting
// for it to exit.
func (o *Opener) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}

	var err error
	switch o.goos {
	case "darwin":
		err = o.launch("open", rawURL)
	case "windows":
		// rundll32 avoids cmd /c start shell interpretation.
		err = o.launch("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		err = o.launch("xdg-open", rawURL)
	}
	if err != nil {
		return ferrors.InternalError(fmt.Sprintf("failed to open browser: %v", err), err).
			WithDetail("url", rawURL)
	}
	return nil
}

// Open opens rawURL with the default Opener.
func Open(rawURL string) error {
	return New().Open(rawURL)
}

// Validate accepts only absolute http and https URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ferrors.ValidationError("invalid URL", err).WithDetail("url", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ferrors.ValidationError(
			fmt.Sprintf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme), nil).
			WithDetail("url", rawURL)
	}
	if u.Host == "" {
		return ferrors.ValidationError("URL has no host", nil).WithDetail("url", rawURL)
	}
	return nil
}
