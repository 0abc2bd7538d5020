// Package cli provides shared infrastructure for command-line commands:
// output formatting for cost and alert results, typed command errors,
// and signal handling for graceful shutdown.
package cli
