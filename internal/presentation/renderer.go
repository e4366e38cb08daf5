package presentation

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
)

const separator = "────────────────────────────────────────"

// TextRenderer writes a plain-text view of every state change to an
// io.Writer. It implements coordinator.Listener.
type TextRenderer struct {
	mu     sync.Mutex
	w      io.Writer
	tod    domain.TimeOfDay
	logger *slog.Logger
}

// NewTextRenderer fixes the time of day for the session.
func NewTextRenderer(w io.Writer, tod domain.TimeOfDay, logger *slog.Logger) *TextRenderer {
	return &TextRenderer{w: w, tod: tod, logger: logger}
}

// StateChanged renders s.
func (r *TextRenderer) StateChanged(s coordinator.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := io.WriteString(r.w, Format(Render(s, r.tod))); err != nil {
		r.logger.Error("render failed", "error", err)
	}
}

// Format lays out a view as text.
func Format(v View) string {
	var b strings.Builder

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "[%s]\n", v.Background)
	fmt.Fprintf(&b, "Search: %s\n", v.Query)
	for i, line := range v.Dropdown {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, line)
	}
	for _, msg := range v.Errors {
		b.WriteString(msg + "\n")
	}
	if v.Loading != "" {
		b.WriteString(v.Loading + "\n")
	}
	if rv := v.Reading; rv != nil {
		fmt.Fprintf(&b, "%s %s\n", rv.Emoji, rv.Name)
		b.WriteString(rv.Temperature + "\n")
		b.WriteString(rv.Wind + "\n")
		fmt.Fprintf(&b, "%s | %s\n", rv.Direction, rv.FeelsLike)
	}
	if v.EmptyState != "" {
		fmt.Fprintf(&b, "🌤️ %s\n", v.EmptyState)
	}
	return b.String()
}
