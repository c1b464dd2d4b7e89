// Package dashboard holds the pure formatting and aggregation helpers used
// by the merchant dashboard: trend percentages, amount formatting, period
// selection, and order-status labeling. Everything here is deterministic
// and free of I/O.
package dashboard
