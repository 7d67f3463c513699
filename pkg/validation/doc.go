// Package validation holds the per-question rules that turn raw replies into typed answers.
//
// A rule either returns a domain.Value or a *Rejection whose Message is shown to the
// user verbatim. Recognition failures are converted to rejections here and never
// escape as internal errors.
package validation
