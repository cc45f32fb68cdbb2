// Package advisor implements the call pipeline around a model exchange.
//
// A Chain orders CallAdvisors by Order() ascending and ends in a terminal
// CallFunc that talks to the model. Lower orders run their before logic
// earlier and their after logic later:
//
//	memory.before -> logger.before -> model -> logger.after -> memory.after
//
// Advisors receive a CallChain and must call NextCall exactly once.
package advisor
