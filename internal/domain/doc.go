// Package domain models the immutable statistical values shared by forecast
// verification: probabilities, thresholds, ensembles, labels and vectors.
//
// # Construction
//
// Every type is validated when it is built and is total afterwards. A
// constructor returns an error wrapping [ErrInvalid] for malformed input;
// nothing in this package panics on user data or mutates a value after it
// has been returned.
//
// # Equality and ordering
//
// Each type implements [Value]: Equal compares by content and returns false
// for nil or for a different variant, Hash is consistent with Equal, and a
// typed Compare method gives a total order consistent with Equal.
//
// Floating point members follow a single convention throughout:
//
//	-0 and +0 are equal
//	NaN equals NaN and sorts before every other number
//
// # Thresholds
//
// A threshold carries an operator and at least one of an absolute value or
// a probability. A threshold with both is a quantile threshold. Presence of
// the probability is part of identity, so "> 0" and "> 0 [Pr = 0]" are
// different keys. Thresholds are comparable and can be used directly as map
// keys.
//
// Ordering rule, applied field by field:
//
//	value absent < value present, then by value
//	probability absent < probability present, then by probability
//	then by operator in declaration order (>, <, >=, <=, ==)
//
// # Labels
//
// Ensemble member labels are interned by a process-wide least-recently-used
// cache ([LabelsOf]). Interning only affects identity reuse; Equal and Hash
// always compare content. The empty instance [NoLabels] is a permanent
// singleton that never enters the cache.
package domain
