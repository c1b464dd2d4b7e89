// Package session holds the client's single source of truth for "who is
// signed in and as what role", with durable persistence through a
// storage.Adapter.
//
// Two representations of the same session live in storage at once: a
// primary JSON blob under "user-store" and flattened compatibility keys
// ("token", "userInfo", "merchantId", "userId") kept for older client
// layouts. The flattened keys are a read-through cache of the blob: on
// restore the blob wins unless it is empty, in which case the flattened
// keys backfill it, and the flattened keys are rewritten afterwards so the
// two layouts agree going forward.
//
// Restore is a best-effort reconciliation, not a transaction. Contradictory
// leftovers (a merchant id with no role tag) resolve toward the merchant
// role, because a merchant id can only have been written by a merchant
// session.
package session
