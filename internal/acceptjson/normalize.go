// Package acceptjson makes requests advertise that they accept JSON.
//
// Clients that omit the Accept header, or send one without a JSON media
// type, make "does the client want JSON" checks downstream pick the
// browser behavior (redirects, HTML error pages). Normalize adds an
// application/json entry to the header while keeping every other entry
// and its quality. The injected entry carries accept.PriorityIndex, so it
// ranks ahead of any existing entry of the same quality.
package acceptjson

import (
	"strings"

	"github.com/terrpan/acceptjson/internal/accept"
)

// MediaTypeJSON is the media type injected into the Accept header.
const MediaTypeJSON = "application/json"

const forceKeyword = "force"

// Options controls how the application/json entry is injected.
type Options struct {
	// Quality is the q value of the injected entry. It is written as is,
	// without range checks.
	Quality float64
	// Force injects the entry even when application/json is already
	// accepted, replacing the client's entry.
	Force bool
}

// DefaultOptions returns quality 1 without forcing.
func DefaultOptions() Options {
	return Options{
		Quality: accept.DefaultQuality,
	}
}

// ParseForce maps a string flag onto Options.Force. Only "force",
// ignoring surrounding whitespace, enables it.
func ParseForce(value string) bool {
	return strings.TrimSpace(value) == forceKeyword
}

// Normalize returns raw with an application/json entry added.
func Normalize(raw string, opts Options) string {
	normalized, _ := NormalizeHeader(raw, opts)
	return normalized
}

// NormalizeHeader is Normalize that also reports whether an entry was
// injected. When it was not, the returned value is raw re-serialized.
func NormalizeHeader(raw string, opts Options) (string, bool) {
	header := accept.Parse(raw)
	injected := Inject(header, opts)

	return header.String(), injected
}

// Inject adds the application/json entry to header at accept.PriorityIndex
// unless header already accepts JSON and opts.Force is unset. It reports
// whether the entry was added.
func Inject(header *accept.Header, opts Options) bool {
	if header.Has(MediaTypeJSON) && !opts.Force {
		return false
	}

	header.Add(accept.NewItem(MediaTypeJSON, opts.Quality).WithIndex(accept.PriorityIndex))

	return true
}
