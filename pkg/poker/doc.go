// Package poker implements a Texas Hold'em table engine as pure state
// transitions. A table is a serializable TableState plus the authoritative
// chair list; every transition is a function of (state, chairs, now), so the
// same table can be driven by action handlers and a periodic sweep through a
// single read-modify-write transaction with no locks inside the engine.
//
// Progress is the one progression entry point. Callers load the state, apply
// an optional player action, call Progress, and persist the result (or roll
// back on error).
//
// Known limitation: the pot is a single undivided pool. When players are
// all-in for different amounts the best hand among all contenders takes the
// whole pot; side pots are not computed.
package poker
