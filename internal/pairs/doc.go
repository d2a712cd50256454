// Package pairs builds immutable collections of observation/prediction pairs.
//
// A Builder accumulates main pairs, baseline pairs, climatology and metadata
// across any number of calls, then Build validates a snapshot of everything
// added so far and returns a Collection. The builder is single-writer and
// keeps its state after Build, so it can be corrected and rebuilt.
//
// Validation at Build, in order:
//
//	a nil pair list was added                        ErrInvalid
//	main pairs never supplied, or an empty pair      ErrInvalid
//	category pairs: counts differ across a dataset   ErrCategoryMismatch
//	category pairs: not exactly one true per half    ErrDuplicateOutcome / ErrMissingOutcome
//	non-finite filtering empties a non-empty dataset ErrInsufficientData
//
// Main and baseline are validated independently, and each keeps its own
// category count.
package pairs
