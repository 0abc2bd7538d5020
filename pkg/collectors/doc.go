// Package collectors defines the provider cost collector contract and
// the registry that dispatches accounts to the adapter for their
// provider.
//
// Each provider lives in its own subpackage (aws, azure, gcp, ncp) and
// wraps that provider's raw billing client, which is an external
// collaborator: adapters consume provider-native records, they do not
// speak the wire protocols themselves.
//
// Provider quirks normalized here:
//   - AWS returns daily, service-grained costs with free-tier metadata
//     in the same payload.
//   - Azure returns one pre-aggregated amount per subscription for the
//     whole range, in the subscription's billing currency.
//   - GCP has no billable-cost source yet; it contributes zero-amount
//     records carrying free-tier credit usage.
//   - NCP bills per calendar month (YYYYMM) in KRW.
package collectors
