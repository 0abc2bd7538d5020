// Package costs defines the domain types shared by the cost aggregation
// engine: the provider enum, normalized cost records, account references,
// and the collector error taxonomy.
//
// Cost records are the single normalized shape every provider adapter
// produces. Each record is one provider/account/day/service observation
// in the provider's native billing currency; all cross-provider math
// happens downstream after currency conversion.
package costs
