// Package pkg provides the core libraries for the perceval-mozilla harvester.
//
// # Overview
//
// perceval-mozilla fetches metadata from Mozilla ecosystem data sources and
// turns it into a uniform, timestamped item stream suitable for archival
// and analytics. The pkg directory is organized into five main areas:
//
//  1. [backend] - The item model and the fetch engines (crates.io today)
//  2. [integrations] - HTTP clients for the upstream registries
//  3. [httputil] - Retry policy and HTTP error types shared by the clients
//  4. [state] - Watermark stores for incremental fetching (files or Redis)
//  5. [storage] - Archive sinks (JSON Lines, SQLite, MongoDB)
//
// # Architecture
//
// The typical data flow through a harvest run:
//
//	Registry API
//	     |
//	[integrations] package (paged HTTP access with retry)
//	     |
//	[backend] package (filtering, enrichment, classification)
//	     |
//	[storage] package (enveloped items appended to one or more sinks)
//
// # Quick Start
//
// Fetch every crate updated since a date and print the enveloped items:
//
//	import (
//	    "context"
//	    "github.com/sduenas/perceval-mozilla/pkg/backend"
//	    "github.com/sduenas/perceval-mozilla/pkg/backend/crates"
//	)
//
//	b := crates.New(crates.Options{})
//	from, _ := backend.ParseDateTime("2026-01-01")
//
//	it := b.Fetch(backend.FetchOptions{FromDate: from})
//	for it.Next(context.Background()) {
//	    env, _ := backend.Envelop(b, "", it.Item(), time.Now().UTC())
//	    fmt.Println(env.UUID)
//	}
//	if err := it.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Main Packages
//
// [backend] - The Backend interface, the item envelope with its SHA1
// identity, category tags, and the permissive datetime parser.
//
// [backend/crates] - The crates.io fetch engine: walks the alphabetical
// listing, filters by update date, enriches each crate with owners,
// downloads, and versions, and classifies raw payloads into categories.
//
// [integrations] - The shared HTTP client: default headers, query
// parameters, connection-error retry, and status-error reporting.
//
// [integrations/cratesio] - The crates.io REST client with cursor-style
// page iteration over the registry listing.
//
// [state] - Watermark persistence keyed by origin and category, backed by
// plain files or Redis.
//
// [storage] - Sinks that archive the item stream; several sinks can run
// in a single fan-out.
package pkg
