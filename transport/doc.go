// Package transport wraps an http.RoundTripper with the cross-cutting
// request policy every call to the mall backend carries: bearer-token
// attachment (skipped on public endpoints), anti-forgery token echo on
// mutating methods, and a per-request correlation id.
//
// Response classification does not live here. The round tripper augments
// requests and leaves the response body untouched, so blob downloads pass
// through byte-for-byte; the client layer normalizes envelopes after the
// body is read.
package transport
