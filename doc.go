// Package tradetax reconstructs realized gains from a trader's order history.
//
// It consumes fills grouped by symbol and produces, per symbol, an ordered
// ledger of events:
//   - Positions: equity and crypto fills are matched against a stack of open
//     lots, the most recent purchase first (LIFO). Every match reports a
//     holding period, a realized gain and a fee; the ledger ends with the
//     remaining open quantity. See [MatchPositions].
//   - Options: option leg fills are reported as signed cash flows, and the
//     ledger ends with their net total. See [MatchOptions].
//
// Both matchers are pure functions of the records and the user filters (a
// symbol substring and an optional one year [Window]). The window only
// selects which events are reported: matching always runs over the whole
// history.
//
// The [Engine] serves interactive use: it memoizes reports and isolates
// symbols from each other. Ingestion of broker exports lives in
// [ImportTrades] and [ImportOptionTrades]; rendering lives in the renderer
// package and the command line in the cmd package.
package tradetax
