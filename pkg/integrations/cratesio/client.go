package cratesio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sduenas/perceval-mozilla/pkg/httputil"
	"github.com/sduenas/perceval-mozilla/pkg/integrations"
)

// Registry endpoints.
const (
	// RegistryURL is the public site, used as the origin of harvested items.
	RegistryURL = "https://crates.io/"

	// APIURL is the default base for API requests.
	APIURL = "https://crates.io/api/v1/"
)

// Attribute names accepted by [Client.CrateAttribute].
const (
	AttrOwnerTeam = "owner_team"
	AttrOwnerUser = "owner_user"
	AttrVersions  = "versions"
	AttrDownloads = "downloads"
)

// DefaultSleepTime is the backoff unit applied when the connection to
// crates.io is lost.
const DefaultSleepTime = 300 * time.Second

// maxRetries is the guarded attempt ceiling for a single request. One
// further unguarded attempt follows it; see [httputil.Policy].
const maxRetries = 5

// Options configures a crates.io client. The zero value is usable and
// targets the public API.
type Options struct {
	// APIURL overrides the API base URL, mainly for tests.
	APIURL string

	// SleepTime is the linear backoff unit on connection loss.
	// Zero means [DefaultSleepTime].
	SleepTime time.Duration

	// Headers are merged over the default headers on every request.
	// The surrounding CLI uses this to pass an Authorization header;
	// the client itself does not interpret them.
	Headers map[string]string

	// HTTP overrides the transport client.
	HTTP *http.Client

	// Logger receives retry warnings and HTTP error bodies.
	Logger *log.Logger
}

// Client retrieves raw metadata from the crates.io API.
//
// All methods return response bodies as text; only the listing iterator
// decodes enough JSON to drive pagination. Requests that lose the
// connection are retried up to 5 times with linear backoff, then attempted
// once more unguarded. HTTP error statuses are never retried.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client.
func NewClient(opts Options) *Client {
	base := opts.APIURL
	if base == "" {
		base = APIURL
	}
	sleep := opts.SleepTime
	if sleep == 0 {
		sleep = DefaultSleepTime
	}

	headers := map[string]string{"Content-type": "application/json"}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	policy := httputil.Policy{Attempts: maxRetries, Unit: sleep}
	return &Client{
		Client:  integrations.NewClient(opts.HTTP, policy, headers, opts.Logger),
		baseURL: base,
	}
}

// Summary fetches the registry-wide summary statistics endpoint.
func (c *Client) Summary(ctx context.Context) (string, error) {
	return c.GetText(ctx, integrations.JoinURL(c.baseURL, "summary"), nil)
}

// Crate fetches the full resource for a single crate.
func (c *Client) Crate(ctx context.Context, crateID string) (string, error) {
	return c.GetText(ctx, integrations.JoinURL(c.baseURL, "crates", crateID), nil)
}

// CrateAttribute fetches one sub-resource of a crate. Attribute should be
// one of the Attr* constants.
func (c *Client) CrateAttribute(ctx context.Context, crateID, attribute string) (string, error) {
	return c.GetText(ctx, integrations.JoinURL(c.baseURL, "crates", crateID, attribute), nil)
}

// Listing returns an iterator over the raw pages of the alphabetical crate
// listing, starting at fromPage (pages are 1-based; fromPage below 1 is
// treated as 1). Each advance issues exactly one HTTP request; iteration
// ends once the entries seen reach the total reported by the first page's
// meta block. Abandoning the iterator early is safe and stops all further
// requests.
func (c *Client) Listing(fromPage int) *Pages {
	return &Pages{client: c, page: max(fromPage, 1)}
}

func (c *Client) listingPage(ctx context.Context, page int) (string, error) {
	params := url.Values{
		"sort": {"alphabetical"},
		"page": {strconv.Itoa(page)},
	}
	return c.GetText(ctx, integrations.JoinURL(c.baseURL, "crates"), params)
}

// Pages is a pull-based iterator over raw listing pages.
//
// Usage follows the scanner idiom:
//
//	pages := client.Listing(1)
//	for pages.Next(ctx) {
//	    process(pages.Body())
//	}
//	if err := pages.Err(); err != nil { ... }
type Pages struct {
	client *Client
	page   int
	seen   int
	total  int
	begun  bool
	body   string
	err    error
	done   bool
}

// Next fetches the next page. It returns false when the listing is
// exhausted or an error occurred; check Err to tell the two apart.
func (p *Pages) Next(ctx context.Context) bool {
	if p.done || p.err != nil {
		return false
	}
	if p.begun && p.seen >= p.total {
		p.done = true
		return false
	}

	raw, err := p.client.listingPage(ctx, p.page)
	if err != nil {
		p.err = err
		return false
	}

	var meta listingMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		p.err = fmt.Errorf("decode listing page %d: %w", p.page, err)
		return false
	}

	p.seen += len(meta.Crates)
	if !p.begun {
		p.total = meta.Meta.Total
		p.begun = true
	}
	p.body = raw
	p.page++
	return true
}

// Body returns the raw text of the page fetched by the last successful
// call to Next.
func (p *Pages) Body() string { return p.body }

// Err returns the first error encountered during iteration, if any.
func (p *Pages) Err() error { return p.err }

// listingMeta is the minimal slice of a listing page the iterator needs
// to advance: the entry count of the page and the registry-wide total.
type listingMeta struct {
	Crates []json.RawMessage `json:"crates"`
	Meta   struct {
		Total int `json:"total"`
	} `json:"meta"`
}
