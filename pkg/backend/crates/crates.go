// Package crates implements the crates.io backend: an incremental
// harvester that turns the registry's paginated listing into a stream of
// enriched crate records, or takes a one-shot snapshot of the registry
// summary.
package crates

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
	"github.com/sduenas/perceval-mozilla/pkg/integrations/cratesio"
)

// Name and Version identify this backend in item envelopes.
const (
	Name    = "crates"
	Version = "0.3.0"
)

// fetchedOnLayout formats the summary snapshot timestamp. It parses back
// through backend.ParseDateTime.
const fetchedOnLayout = "2006-01-02T15:04:05.000000Z"

// Options configures the crates.io backend.
type Options struct {
	// APIURL overrides the registry API base URL, mainly for tests.
	// When set it is also used as the origin of harvested items.
	APIURL string

	// SleepTime is the backoff unit applied on connection loss.
	SleepTime time.Duration

	// Headers are passed through to the client untouched. The CLI layers
	// token auth here.
	Headers map[string]string

	// HTTP overrides the transport client.
	HTTP *http.Client

	// Logger receives fetch progress and client warnings. Nil falls back
	// to log.Default().
	Logger *log.Logger
}

// Crates harvests package metadata from crates.io.
//
// Two categories are supported. CategoryCrates walks the alphabetical
// listing and yields one enriched record per crate updated on or after the
// requested from-date; CategorySummary yields a single snapshot of the
// registry statistics. One fetch produces items of one category only.
//
// The backend keeps no state between fetches: no item cache, no resume
// point. Incremental behavior relies entirely on the caller persisting the
// from-date across runs.
type Crates struct {
	client *cratesio.Client
	origin string
	logger *log.Logger
}

// New creates a crates.io backend.
func New(opts Options) *Crates {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	origin := cratesio.RegistryURL
	if opts.APIURL != "" {
		origin = opts.APIURL
	}
	client := cratesio.NewClient(cratesio.Options{
		APIURL:    opts.APIURL,
		SleepTime: opts.SleepTime,
		Headers:   opts.Headers,
		HTTP:      opts.HTTP,
		Logger:    logger,
	})
	return &Crates{client: client, origin: origin, logger: logger}
}

func (c *Crates) Name() string    { return Name }
func (c *Crates) Version() string { return Version }
func (c *Crates) Origin() string  { return c.origin }

// HasCaching reports that fetched items are never cached.
func (c *Crates) HasCaching() bool { return false }

// HasResuming reports that an interrupted fetch cannot be resumed.
func (c *Crates) HasResuming() bool { return false }

// Fetch starts a fetch. A zero FromDate means no lower bound; an empty
// category defaults to CategoryCrates.
func (c *Crates) Fetch(opts backend.FetchOptions) backend.Items {
	fromDate := opts.FromDate
	if fromDate.IsZero() {
		fromDate = backend.DefaultDateTime
	}

	if opts.Category == backend.CategorySummary {
		return &summaryStream{harvester: c, now: time.Now}
	}
	return &crateStream{
		harvester: c,
		fromDate:  fromDate.UTC(),
		pages:     c.client.Listing(1),
	}
}

// Classify derives an item category from the payload shape: summary
// payloads carry a num_downloads field, crate payloads never do. This is
// the construction-time decision rule; once an Item exists its Category
// field is authoritative.
func Classify(data map[string]any) backend.Category {
	if _, ok := data["num_downloads"]; ok {
		return backend.CategorySummary
	}
	return backend.CategoryCrates
}

// ItemCategory returns the category assigned when the item was built.
func (c *Crates) ItemCategory(item backend.Item) backend.Category {
	return item.Category
}

// ItemID extracts the stable identifier of an item: the crate id for
// crate records, the stringified UNIX timestamp of fetched_on for summary
// snapshots.
func (c *Crates) ItemID(item backend.Item) (string, error) {
	if c.ItemCategory(item) == backend.CategoryCrates {
		id, ok := item.Data["id"]
		if !ok {
			return "", fmt.Errorf("crate item has no id field")
		}
		return fmt.Sprint(id), nil
	}

	ts, err := fetchedOn(item)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(backend.ToUnix(ts), 'f', -1, 64), nil
}

// ItemUpdatedOn extracts an item's update time as a UNIX timestamp:
// updated_at for crate records, fetched_on for summary snapshots.
func (c *Crates) ItemUpdatedOn(item backend.Item) (float64, error) {
	if c.ItemCategory(item) == backend.CategoryCrates {
		raw, ok := item.Data["updated_at"].(string)
		if !ok {
			return 0, fmt.Errorf("crate item has no updated_at field")
		}
		ts, err := backend.ParseDateTime(raw)
		if err != nil {
			return 0, err
		}
		return backend.ToUnix(ts), nil
	}

	ts, err := fetchedOn(item)
	if err != nil {
		return 0, err
	}
	return backend.ToUnix(ts), nil
}

func fetchedOn(item backend.Item) (time.Time, error) {
	raw, ok := item.Data["fetched_on"].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("summary item has no fetched_on field")
	}
	return backend.ParseDateTime(raw)
}

var _ backend.Backend = (*Crates)(nil)

// decode unmarshals raw JSON text, wrapping failures with what was being
// decoded.
func decode(raw, what string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
