// Package engine implements the Single Transferable Vote tally.
//
// The engine takes an ir.Election and a seat count and produces an
// ir.Result: the elected candidates in rank order plus a snapshot of
// every counting round.
//
// COUNTING MODEL:
//
// Every ballot starts as one Portion of weight 1 assigned to its first
// preference. Each round:
//  1. Standing candidates are tabulated from the portions they hold.
//  2. Candidates reaching the quota are elected, highest total first,
//     never more than the seats still open.
//  3. The count ends when every seat is filled, or when nobody reached
//     the quota and the candidates still standing can only just fill the
//     remaining seats; they are then elected by exhaustion.
//  4. Each newly elected candidate keeps exactly the quota. Its surplus
//     travels on: every portion is reweighted by surplus/total and moves
//     to the ballot's next standing preference.
//  5. If nobody was elected, the lowest standing candidate is eliminated
//     and its portions move on at unchanged weight.
//
// A portion with no standing preference left is exhausted. An election
// with no more candidates than seats runs no rounds at all.
//
// DETERMINISM:
//
// All arithmetic is exact (math/big.Rat). Ties are broken by an explicit
// TieBreak policy, never by map iteration or input order. Tallying the
// same election twice yields byte-identical canonical results; see
// VerifyDeterminism.
//
// The engine is synchronous and owns its TallyState for the duration of
// one Tally call. An Engine value holds only configuration and may be
// shared between goroutines.
package engine
