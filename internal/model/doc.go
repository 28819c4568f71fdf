// Package model defines the shop-side order types accepted by the bridge.
//
// These mirror the shop order message: an order is a list of items, each with
// a model code and a list of free-form name/value options.
//
// Conventions:
//   - Item.Model: character at index 1 is the complexity digit ('0'-'3')
//   - Option names are prefix-dispatched: base_*, cap_*, ring_<n>*
//   - Matching on names and values is case-insensitive
package model
