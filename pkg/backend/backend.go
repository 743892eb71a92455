// Package backend defines the shared contracts for data-source backends:
// the classified item model, the pull-based item stream, and the metadata
// envelope attached to every harvested item.
//
// A backend translates fetch requests into a lazy stream of items. The
// consumer drives advancement; every call to Next may perform blocking
// I/O. Exhaustion and failure are distinct terminal states, told apart
// through Err.
package backend

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Category classifies a harvested item. The set of categories is closed
// and fixed per backend.
type Category string

const (
	// CategoryCrates tags enriched crate records.
	CategoryCrates Category = "crates"

	// CategorySummary tags registry-wide summary snapshots.
	CategorySummary Category = "summary"
)

// DefaultDateTime is the epoch sentinel used when no lower bound on the
// fetch is requested.
var DefaultDateTime = time.Unix(0, 0).UTC()

// Item is one unit of harvested data. The category is decided once, when
// the item is constructed, and carried as an explicit discriminant so
// consumers never need to re-derive it from the payload shape.
type Item struct {
	Category Category
	Data     map[string]any
}

// FetchOptions parameterizes a fetch request.
type FetchOptions struct {
	// FromDate is the inclusive lower bound on an item's update time.
	// The zero value means [DefaultDateTime], i.e. no lower bound.
	FromDate time.Time

	// Category selects what to fetch. An empty value selects the
	// backend's default category.
	Category Category
}

// Items is a pull-based iterator over harvested items.
//
//	it := backend.Fetch(opts)
//	for it.Next(ctx) {
//	    consume(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
type Items interface {
	// Next advances to the next item, performing whatever blocking I/O
	// that requires. It returns false on exhaustion or failure.
	Next(ctx context.Context) bool

	// Item returns the item produced by the last successful Next.
	Item() Item

	// Err returns the error that terminated iteration, or nil if the
	// stream ended cleanly.
	Err() error
}

// Backend is a data source that produces classified items and knows how
// to extract incremental-bookkeeping metadata from them.
type Backend interface {
	// Name identifies the backend (e.g. "crates").
	Name() string

	// Version is the backend implementation version recorded in
	// envelopes.
	Version() string

	// Origin is the canonical URL of the data source.
	Origin() string

	// Fetch starts a fetch. The returned stream is lazy; no request is
	// issued until its first Next call.
	Fetch(opts FetchOptions) Items

	// HasCaching reports whether the backend caches fetched items.
	HasCaching() bool

	// HasResuming reports whether a fetch can resume mid-traversal.
	HasResuming() bool

	// ItemID extracts the stable identifier of an item.
	ItemID(item Item) (string, error)

	// ItemUpdatedOn extracts an item's update time as a UNIX timestamp
	// in floating-point seconds.
	ItemUpdatedOn(item Item) (float64, error)

	// ItemCategory returns an item's category.
	ItemCategory(item Item) Category
}

// Envelope wraps a harvested item with the metadata downstream archival
// and indexing rely on.
type Envelope struct {
	UUID           string         `json:"uuid"`
	Origin         string         `json:"origin"`
	BackendName    string         `json:"backend_name"`
	BackendVersion string         `json:"backend_version"`
	Timestamp      float64        `json:"timestamp"`
	Category       Category       `json:"category"`
	Tag            string         `json:"tag"`
	UpdatedOn      float64        `json:"updated_on"`
	Data           map[string]any `json:"data"`
}

// Envelop builds the metadata envelope for item, harvested by b at
// fetchedAt. An empty tag defaults to the backend's origin.
func Envelop(b Backend, tag string, item Item, fetchedAt time.Time) (Envelope, error) {
	id, err := b.ItemID(item)
	if err != nil {
		return Envelope{}, fmt.Errorf("extract item id: %w", err)
	}
	updatedOn, err := b.ItemUpdatedOn(item)
	if err != nil {
		return Envelope{}, fmt.Errorf("extract item update time: %w", err)
	}
	if tag == "" {
		tag = b.Origin()
	}

	return Envelope{
		UUID:           UUID(b.Origin(), id),
		Origin:         b.Origin(),
		BackendName:    b.Name(),
		BackendVersion: b.Version(),
		Timestamp:      ToUnix(fetchedAt),
		Category:       b.ItemCategory(item),
		Tag:            tag,
		UpdatedOn:      updatedOn,
		Data:           item.Data,
	}, nil
}

// UUID computes the identifier of an item from its origin and per-item
// fields: the SHA1 of the colon-joined arguments. The same inputs always
// produce the same UUID, so re-harvested items collide on purpose.
func UUID(args ...string) string {
	sum := sha1.Sum([]byte(strings.Join(args, ":")))
	return hex.EncodeToString(sum[:])
}

// ToUnix converts a time to a UNIX timestamp in floating-point seconds,
// keeping microsecond precision.
func ToUnix(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
