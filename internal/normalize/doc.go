// Package normalize converts raw upstream payloads into model records.
//
// Adapters:
//   - PriceSeries: EIA v2 series responses -> []model.PricePoint
//   - ArticleList: GDELT DOC 2.0 ArtList JSON -> []model.NewsEvent
//   - Feed: RSS/Atom documents -> []model.NewsEvent
//
// Items missing a required field or carrying an unparseable timestamp or
// value are dropped and counted in Batch.Dropped; they never fail the batch.
// Output is sorted ascending by timestamp.
package normalize
