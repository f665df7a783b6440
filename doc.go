// Package networth tracks a personal balance sheet: cash, planned-expense
// reserves, an emergency fund, and ETF holdings.
//
// The package provides three cooperating engines:
//
//   - a price cache (PriceCache) that decorates any PriceSource with a
//     persisted, freshness-aware cache so that slow or rate-limited feeds
//     are hit at most once per fresh key,
//   - a valuation engine (Performance) that replays the transaction ledger
//     into point-in-time positions and prices them at sampled dates to
//     produce a value series with total and annualized returns,
//   - an aggregation layer (NewSnapshot) that combines the four bucket
//     summaries into a single net-worth snapshot.
//
// All monetary amounts are exact decimals; rounding happens only at
// presentation boundaries.
package networth
