// Package mallclient is the Go client SDK for the Baiwu mall platform. It
// owns the session lifecycle across the platform's three roles (shopper,
// merchant, administrator), the cross-cutting HTTP request policy (bearer
// tokens, anti-forgery echo, correlation ids), normalization of the
// backend's inconsistent response envelopes, and the navigation guard.
//
// The package is designed for concurrent callers: Client methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// mallclient is the public surface. It exposes [Client], [Builder],
// [Config], the error taxonomy, and value types. Session state lives in
// the session subpackage, persistence in storage, request augmentation in
// transport, and navigation decisions in guard; none of them import this
// package back.
//
// # What this package must NOT do
//
//   - Retry a failed call. Every failure is terminal for that call and is
//     retried only by explicit caller action.
//   - Force a logout on its own. Auth failures are surfaced to the caller;
//     the interactive session-expired flow runs only through the
//     configured Prompter.
//   - Reach into ambient global state. The session store is owned by the
//     Client and passed by reference to its collaborators.
package mallclient
