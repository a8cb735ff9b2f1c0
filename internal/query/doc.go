// Package query resolves relative range tokens into time windows anchored
// to the freshest stored row of a series, and reads the rows inside them.
package query
