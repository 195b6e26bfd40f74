// Package browser opens URLs in the user's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"dbconsole/pkg/logging"
)

// ErrNoOpener is returned when no browser launcher is installed.
var ErrNoOpener = errors.New("no browser opener found")

// Opener launches the platform's browser helper. The zero value is not
// usable; create one with NewOpener.
type Opener struct {
	goos     string
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// NewOpener creates an Opener for the running platform.
func NewOpener() *Opener {
	return &Opener{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			if err := cmd.Start(); err != nil {
				return err
			}
			// Reap the helper so it does not linger as a zombie.
			go cmd.Wait()
			return nil
		},
	}
}

// Open starts the browser helper for rawURL without waiting for it.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme", rawURL)
	}

	name, args, err := o.command(rawURL)
	if err != nil {
		return err
	}
	logging.Debug("Browser", "Running %s %v", name, args)
	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

// command picks the launcher for the platform, falling back to whatever is
// on PATH.
func (o *Opener) command(rawURL string) (string, []string, error) {
	switch o.goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	}

	for _, candidate := range []string{"xdg-open", "x-www-browser", "open"} {
		if o.available(candidate) {
			return candidate, []string{rawURL}, nil
		}
	}
	return "", nil, ErrNoOpener
}

func (o *Opener) available(name string) bool {
	_, err := o.lookPath(name)
	return err == nil
}
