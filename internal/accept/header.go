// Package accept parses and serializes HTTP Accept header values.
//
// A Header keeps one Item per media type. Items are ranked by quality
// (descending) and then by index (ascending); parsed items are indexed
// from 0 in the order they appear, so callers that need an item to win
// ties against everything parsed can give it PriorityIndex.
package accept

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// PriorityIndex is the index given to items that must outrank every
// parsed item of equal quality.
const PriorityIndex = -1

// DefaultQuality is the quality of an item without a q parameter.
const DefaultQuality = 1.0

const qualityParam = "q"

// Param is a media range parameter other than q.
type Param struct {
	Key   string
	Value string
}

// Item is a single media range of an Accept header.
type Item struct {
	MediaType string
	Quality   float64
	Index     int
	Params    []Param
}

// NewItem returns an item for mediaType with the given quality and index 0.
func NewItem(mediaType string, quality float64) Item {
	return Item{
		MediaType: mediaType,
		Quality:   quality,
	}
}

// WithIndex returns a copy of the item with its tie-break index set.
func (i Item) WithIndex(index int) Item {
	i.Index = index
	return i
}

// WithParam returns a copy of the item with key set to value. The q
// parameter sets the quality instead.
func (i Item) WithParam(key, value string) Item {
	key = strings.ToLower(key)
	if key == qualityParam {
		i.Quality = parseQuality(value)
		return i
	}

	params := slices.Clone(i.Params)
	for n := range params {
		if params[n].Key == key {
			params[n].Value = value
			i.Params = params
			return i
		}
	}

	i.Params = append(params, Param{Key: key, Value: value})
	return i
}

// Param returns the value of a media range parameter.
func (i Item) Param(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, p := range i.Params {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// String renders the item as it appears in an Accept header. The q
// parameter is omitted when it equals DefaultQuality.
func (i Item) String() string {
	var b strings.Builder

	b.WriteString(i.MediaType)

	if i.Quality != DefaultQuality {
		b.WriteString(";q=")
		b.WriteString(FormatQuality(i.Quality))
	}

	for _, p := range i.Params {
		b.WriteByte(';')
		b.WriteString(p.Key)

		if p.Value != "" {
			b.WriteByte('=')
			b.WriteString(quoteIfNeeded(p.Value))
		}
	}

	return b.String()
}

// Compare orders items by precedence: higher quality first, then lower
// index first. It returns a negative number when a ranks ahead of b.
func Compare(a, b Item) int {
	if a.Quality != b.Quality {
		if a.Quality > b.Quality {
			return -1
		}
		return 1
	}

	return cmp.Compare(a.Index, b.Index)
}

// Less reports whether a ranks strictly ahead of b.
func Less(a, b Item) bool {
	return Compare(a, b) < 0
}

// FormatQuality renders a quality value in its shortest form.
func FormatQuality(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Header is an Accept header value with unique media types.
type Header struct {
	items []Item
}

// Parse reads a raw Accept header value. Parsing never fails: empty
// segments are skipped and an unreadable q parameter counts as 0.
func Parse(raw string) *Header {
	h := &Header{}
	index := 0

	for _, segment := range splitOutsideQuotes(raw, ',') {
		item, ok := parseItem(segment)
		if !ok {
			continue
		}

		h.Add(item.WithIndex(index))
		index++
	}

	return h
}

func parseItem(segment string) (Item, bool) {
	parts := splitOutsideQuotes(segment, ';')

	mediaType := strings.TrimSpace(parts[0])
	if mediaType == "" {
		return Item{}, false
	}

	item := NewItem(mediaType, DefaultQuality)

	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(part, "=")

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		item = item.WithParam(key, unquote(strings.TrimSpace(value)))
	}

	return item, true
}

// parseQuality reads a q value. Anything that is not a finite number,
// including NaN and Inf, counts as 0.
func parseQuality(value string) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}

	return q
}

// Add inserts item, replacing any item with the same media type.
func (h *Header) Add(item Item) {
	for n := range h.items {
		if h.items[n].MediaType == item.MediaType {
			h.items[n] = item
			return
		}
	}

	h.items = append(h.items, item)
}

// Has reports whether the header contains mediaType exactly.
func (h *Header) Has(mediaType string) bool {
	_, ok := h.Get(mediaType)
	return ok
}

// Get returns the item for mediaType.
func (h *Header) Get(mediaType string) (Item, bool) {
	for _, item := range h.items {
		if item.MediaType == mediaType {
			return item, true
		}
	}

	return Item{}, false
}

// All returns the items in precedence order.
func (h *Header) All() []Item {
	items := slices.Clone(h.items)
	slices.SortStableFunc(items, Compare)

	return items
}

// First returns the item with the highest precedence.
func (h *Header) First() (Item, bool) {
	if len(h.items) == 0 {
		return Item{}, false
	}

	return slices.MinFunc(h.items, Compare), true
}

// Len returns the number of items.
func (h *Header) Len() int {
	return len(h.items)
}

// String serializes the header with items in precedence order, so that
// a consumer that re-parses it positionally sees the same ranking.
func (h *Header) String() string {
	items := h.All()

	parts := make([]string, len(items))
	for n, item := range items {
		parts[n] = item.String()
	}

	return strings.Join(parts, ",")
}
