// Package httputil provides HTTP utilities for registry API clients.
//
// # Overview
//
//   - [Policy]: retry with linear backoff for connection-level failures
//   - [RetryableError]: marker for failures worth retrying
//   - [StatusError]: terminal non-2xx responses, body included
//
// # Retry
//
// [Policy.Do] retries only errors wrapped in [RetryableError]. Connection
// failures sleep Unit*attempt between tries (attempt 1 waits one unit,
// attempt 2 waits two, and so on). HTTP status errors are never retried:
// the server answered, it just said no.
//
//	policy := httputil.Policy{Attempts: 5, Unit: 300 * time.Second}
//	err := policy.Do(ctx, func() error { return doRequest() })
//
// After the guarded attempts are spent, Do issues one final attempt with
// no guard; a transport failure at that point propagates to the caller.
package httputil
