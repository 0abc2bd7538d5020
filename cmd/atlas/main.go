// Atlas is a multi-provider cloud cost aggregation and budget engine.
//
// It collects billing data from AWS, Azure, GCP, and NCP accounts,
// normalizes it into a single display currency, tracks free-tier quota
// consumption, and evaluates budget thresholds:
//   - Concurrent per-account collection with partial-failure tolerance
//   - Provider, account, and service cost rollups with
//     period-over-period deltas
//   - Consolidated and per-account budget modes with alert thresholds
//   - Scheduled alert sweeps on a cron schedule
//
// Usage:
//
//	# Start the API server with default configuration
//	atlas run
//
//	# Start with custom configuration file
//	atlas run --config /path/to/config.yaml
//
//	# One-shot aggregation printed to stdout
//	atlas costs --format json
//
//	# Evaluate budget thresholds once and print alerts
//	atlas check-alerts
//
//	# Validate a configuration file
//	atlas validate --config /path/to/config.yaml
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
