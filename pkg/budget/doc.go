// Package budget implements tenant budget policies and threshold
// evaluation.
//
// A tenant owns one Settings object, scoped either CONSOLIDATED (one
// limit for all accounts) or ACCOUNT_SPECIFIC (explicit per-account
// limits with the consolidated limit as a display fallback). Usage and
// alerts are derived values, recomputed from live settings and live
// cost on every query so they can never go stale.
//
// Persistence is pluggable through the Store interface; see
// pkg/budget/storage for the memory and SQLite backends.
package budget
