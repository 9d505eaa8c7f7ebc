// Package onyx provides the core of a personal trading and investment
// journal. It is local-first: every piece of state is plain serializable data
// handed to a caller-provided Store.
//
// The core functionalities include:
//   - Trade Ledger: opening trades under a strategy, banking partial closes,
//     full closes and stop-loss hits into a realized profit, and moving
//     finalized trades from the active set to the history.
//   - Tag Ledger: a global tag vocabulary and per-trade tag membership.
//   - Analytics Engine: net profit, win rate, average risk:reward, profit
//     factor and tag attribution over a reporting period.
//   - Model Builder: performance of the trades carrying a conjunction of tags,
//     promotable into a new strategy.
//   - Equity Simulator: expected and simulated account equity for a given win
//     rate and reward:risk ratio.
//   - Portfolio Ledger: long-term investment positions, their valuation and a
//     throttled series of total value snapshots.
//
// This package serves as the foundational logic for the `onyx` command-line
// tool.
package onyx
