// Package recognizers turns free English text into numeric and date/time candidates.
//
// Candidates are returned in order of appearance. Callers that scan for a match must
// keep that order: the first matching candidate wins.
package recognizers
