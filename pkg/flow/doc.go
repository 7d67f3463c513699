// Package flow holds the ordered question table and its static successor function.
//
// A Sequence never decides whether to advance; it only answers "what comes after q".
// The decision comes from the validation outcome, owned by the runtime.
package flow
