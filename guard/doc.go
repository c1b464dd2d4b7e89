// Package guard gates navigation based on declared per-route requirements.
// Evaluate is a pure, synchronous decision function: it consults an
// already-resolved session and returns either "allowed" or a redirect
// target, never performing I/O and never retrying.
package guard
