// Package allocation values a personal portfolio and compares it to a target
// allocation.
//
// The core functionalities include:
//   - Holdings Table: an ordered, user editable list of holdings, each with a
//     UnitKind resolved once from the text the user typed.
//   - Price Snapshots: a PriceTable of last prices plus the TWD quote, taken
//     by a market data collaborator (see package market) and read as is.
//   - Valuation Engine: a stateless engine converting every holding to USD,
//     aggregating them and computing the drift of each target bucket along
//     with the amount to buy or sell.
//
// The engine never fails on a single bad row: a holding it cannot value is
// worth zero, and the report says why. This package serves as the foundation
// of the `alloc` command line tool.
package allocation
