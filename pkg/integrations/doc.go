// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains the low-level plumbing shared by registry API
// clients. Each registry has its own subpackage; currently:
//
//   - [cratesio]: the crates.io registry API
//
// # Client Pattern
//
// Registry clients embed [Client], which dispatches GET requests with
// default headers and recovers from connection loss under a
// [httputil.Policy]. Bodies are returned as raw text so that each registry
// client decides how much of a response it decodes.
//
//	client := cratesio.NewClient(cratesio.Options{})
//	body, err := client.Summary(ctx)
//
// # Error Model
//
//   - [ErrConnection]: transport failure, wrapped retryable
//   - [httputil.StatusError]: non-2xx response, never retried
//
// [cratesio]: github.com/sduenas/perceval-mozilla/pkg/integrations/cratesio
// [httputil.Policy]: github.com/sduenas/perceval-mozilla/pkg/httputil.Policy
package integrations
