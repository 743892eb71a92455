// Package cratesio implements a raw-text client for the crates.io API.
//
// The client exposes the four endpoints the harvester needs:
//
//   - [Client.Summary]: GET /summary
//   - [Client.Listing]: GET /crates?sort=alphabetical&page=N (paginated)
//   - [Client.Crate]: GET /crates/{id}
//   - [Client.CrateAttribute]: GET /crates/{id}/{attribute}
//
// Responses are returned as raw JSON text; decoding is left to the caller.
// The listing is consumed through [Pages], a pull iterator that issues one
// request per advance and stops when the cumulative number of listed
// entries reaches the total reported by the first page.
package cratesio
