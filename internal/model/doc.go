// Package model defines shared data types used across the gas market data service.
//
// All types mirror the prices and news tables created by the store package.
//
// Conventions:
//   - Prices: float64 in the upstream unit ($/MMBtu for Henry Hub)
//   - Timestamps: int64 milliseconds since Unix epoch
//   - IDs: source-prefixed SHA-1 hex strings for news events
package model
