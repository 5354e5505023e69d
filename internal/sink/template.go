package sink

import (
	"strings"
	"time"
)

// Filename template defaults matching the recorder's settings defaults.
const (
	DefaultPrefix     = "recording"
	DefaultDateLayout = "2006-01-02_15-04-05"
	defaultBaseName   = "recording"
	partSeparator     = "_"
)

// Template builds recording base names from ordered parts: prefix, a
// timestamp rendered with a Go reference-time layout, and suffix. Empty
// parts are omitted; if every part is empty the fixed default name is used.
type Template struct {
	Prefix     string
	DateLayout string
	Suffix     string
}

// DefaultTemplate matches the recorder's out-of-the-box naming,
// e.g. "recording_2026-08-29_14-03-59".
func DefaultTemplate() Template {
	return Template{Prefix: DefaultPrefix, DateLayout: DefaultDateLayout}
}

// BaseName resolves the template at the given time. The result carries no
// extension; the sink owns the container type.
func (t Template) BaseName(now time.Time) string {
	var parts []string
	if p := strings.TrimSpace(t.Prefix); p != "" {
		parts = append(parts, p)
	}
	if layout := strings.TrimSpace(t.DateLayout); layout != "" {
		parts = append(parts, now.Format(layout))
	}
	if s := strings.TrimSpace(t.Suffix); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return defaultBaseName
	}
	return strings.Join(parts, partSeparator)
}
