// Package terminal drives the widget from line-oriented input.
//
// A plain line replaces the search text, an empty line clears it, ":N" picks
// the Nth entry (1-based) of the dropdown currently on screen and ":q" quits.
package terminal

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
)

const quitCommand = ":q"

// Widget accepts user input.
type Widget interface {
	QueryChanged(text string)
	SelectSuggestion(s domain.Suggestion)
}

// Driver translates input lines into widget calls. Register it as a
// coordinator.Listener so selection commands resolve against the visible
// dropdown.
type Driver struct {
	widget Widget
	logger *slog.Logger

	mu      sync.Mutex
	visible []domain.Suggestion
}

// NewDriver creates a Driver for w.
func NewDriver(w Widget, logger *slog.Logger) *Driver {
	return &Driver{widget: w, logger: logger}
}

// StateChanged records the dropdown currently on screen.
func (d *Driver) StateChanged(s coordinator.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.SuggestionsVisible {
		d.visible = s.Suggestions
	} else {
		d.visible = nil
	}
}

// Run reads lines from r until EOF, a quit command or context cancellation.
func (d *Driver) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !d.handle(strings.TrimRight(line, "\r")) {
				return nil
			}
		}
	}
}

// handle applies one line. It returns false on quit.
func (d *Driver) handle(line string) bool {
	if line == quitCommand {
		d.logger.Info("quit requested")
		return false
	}

	if n, ok := selection(line); ok {
		d.selectNth(n)
		return true
	}

	d.widget.QueryChanged(line)
	return true
}

func (d *Driver) selectNth(n int) {
	d.mu.Lock()
	visible := d.visible
	d.mu.Unlock()

	if n < 1 || n > len(visible) {
		d.logger.Warn("no such suggestion", "index", n, "visible", len(visible))
		return
	}
	d.widget.SelectSuggestion(visible[n-1])
}

// selection parses ":N". Anything else that starts with a colon is search text.
func selection(line string) (int, bool) {
	rest, found := strings.CutPrefix(line, ":")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return n, true
}
