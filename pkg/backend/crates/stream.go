package crates

import (
	"context"
	"fmt"
	"time"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
	"github.com/sduenas/perceval-mozilla/pkg/integrations/cratesio"
)

// listingEntry is the slice of a listed crate summary the stream needs
// before deciding whether to enrich it.
type listingEntry struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updated_at"`
}

// crateStream walks the paginated listing and yields enriched crate
// records. Entries older than fromDate are skipped before any sub-resource
// request is issued, so filtered crates cost nothing beyond their share of
// the listing page. Only one page of decoded entries is held at a time.
type crateStream struct {
	harvester *Crates
	fromDate  time.Time
	pages     *cratesio.Pages
	queue     []listingEntry
	item      backend.Item
	err       error
	done      bool
}

func (s *crateStream) Next(ctx context.Context) bool {
	if s.done || s.err != nil {
		return false
	}

	for {
		if len(s.queue) == 0 {
			if !s.pages.Next(ctx) {
				s.err = s.pages.Err()
				s.done = true
				return false
			}
			var page struct {
				Crates []listingEntry `json:"crates"`
			}
			if err := decode(s.pages.Body(), "listing page", &page); err != nil {
				s.err = err
				return false
			}
			s.queue = page.Crates
			continue
		}

		entry := s.queue[0]
		s.queue = s.queue[1:]

		updatedAt, err := backend.ParseDateTime(entry.UpdatedAt)
		if err != nil {
			s.err = fmt.Errorf("crate %s: %w", entry.ID, err)
			return false
		}
		if updatedAt.Before(s.fromDate) {
			continue
		}

		data, err := s.enrich(ctx, entry.ID)
		if err != nil {
			s.err = err
			return false
		}
		s.item = backend.Item{Category: Classify(data), Data: data}
		return true
	}
}

// enrich fetches the full crate resource and attaches its four
// sub-resource payloads, in a fixed order: owner team, owner users,
// version downloads, versions.
func (s *crateStream) enrich(ctx context.Context, crateID string) (map[string]any, error) {
	raw, err := s.harvester.client.Crate(ctx, crateID)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Crate map[string]any `json:"crate"`
	}
	if err := decode(raw, "crate "+crateID, &wrapper); err != nil {
		return nil, err
	}
	data := wrapper.Crate

	attributes := []struct {
		attr  string
		field string
	}{
		{cratesio.AttrOwnerTeam, "owner_team_data"},
		{cratesio.AttrOwnerUser, "owner_user_data"},
		{cratesio.AttrDownloads, "version_downloads_data"},
		{cratesio.AttrVersions, "versions_data"},
	}
	for _, a := range attributes {
		raw, err := s.harvester.client.CrateAttribute(ctx, crateID, a.attr)
		if err != nil {
			return nil, err
		}
		var payload any
		if err := decode(raw, a.attr+" of crate "+crateID, &payload); err != nil {
			return nil, err
		}
		data[a.field] = payload
	}
	return data, nil
}

func (s *crateStream) Item() backend.Item { return s.item }
func (s *crateStream) Err() error         { return s.err }

// summaryStream yields exactly one item: the registry summary with a
// fetched_on timestamp taken at request time.
type summaryStream struct {
	harvester *Crates
	now       func() time.Time
	item      backend.Item
	err       error
	done      bool
}

func (s *summaryStream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	s.done = true

	raw, err := s.harvester.client.Summary(ctx)
	if err != nil {
		s.err = err
		return false
	}
	var data map[string]any
	if err := decode(raw, "summary", &data); err != nil {
		s.err = err
		return false
	}
	data["fetched_on"] = s.now().UTC().Format(fetchedOnLayout)
	s.item = backend.Item{Category: Classify(data), Data: data}
	return true
}

func (s *summaryStream) Item() backend.Item { return s.item }
func (s *summaryStream) Err() error         { return s.err }
