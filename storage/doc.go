// Package storage provides the key-value persistence substrate underneath
// the session store. Keys are plain strings namespaced by a configurable
// prefix; values are opaque strings (the session layer decides on JSON).
//
// Three adapters are provided:
//
//   - [Memory] — process-local map, used as the default and in tests.
//   - [File] — a single JSON document on disk, written atomically. Supports
//     change notification through fsnotify so a logout performed by another
//     process on the same machine is observed.
//   - [Redis] — go-redis backed, with change notification over a pub/sub
//     channel. Intended for clients that share one session across hosts.
//
// Change notification is deliberately best-effort and at-least-once: the
// session layer treats every event as a hint to re-read, never as a
// transactional signal.
package storage
