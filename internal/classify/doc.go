// Package classify assigns a market-driver category to a news headline.
//
// Matching is a case-insensitive substring test against an ordered keyword
// table. The first category with a matching keyword wins; headlines that
// match nothing are OTHER.
package classify
