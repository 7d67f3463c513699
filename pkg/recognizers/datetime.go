package recognizers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/promptflow/pkg/ports"
)

const usDateLayout = "1/2/2006"

var (
	rangePattern  = regexp.MustCompile(`(?i)\b(?:from|between)\s+(.+?)\s+(?:to|and|until|through)\s+(.+)$`)
	usDatePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
)

func (e *English) parseDates(text string, ref time.Time) ([]ports.DateTimeResult, error) {
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		start, okStart, err := e.parseOne(m[1], ref)
		if err != nil {
			return nil, err
		}
		end, okEnd, err := e.parseOne(m[2], ref)
		if err != nil {
			return nil, err
		}
		if okStart && okEnd {
			return []ports.DateTimeResult{{
				Text:  strings.TrimSpace(m[0]),
				Start: start,
				End:   end,
				Range: true,
			}}, nil
		}
	}

	return e.parseAll(text, ref)
}

type dateMatch struct {
	start, end int
	text       string
	value      time.Time
}

// parseAll returns every single date in text, in text order. Month-first
// numeric dates win over natural language matches that overlap them.
func (e *English) parseAll(text string, ref time.Time) ([]ports.DateTimeResult, error) {
	var matches []dateMatch
	for _, loc := range usDatePattern.FindAllStringIndex(text, -1) {
		t, err := time.ParseInLocation(usDateLayout, text[loc[0]:loc[1]], ref.Location())
		if err != nil {
			continue
		}
		matches = append(matches, dateMatch{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]], value: t})
	}
	numeric := len(matches)

	for offset := 0; offset < len(text); {
		r, err := e.dates.Parse(text[offset:], ref)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if r == nil || r.Text == "" {
			break
		}
		m := dateMatch{start: offset + r.Index, end: offset + r.Index + len(r.Text), text: r.Text, value: r.Time}
		offset = m.end
		if !overlaps(matches[:numeric], m) {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })
	out := make([]ports.DateTimeResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, ports.DateTimeResult{Text: strings.TrimSpace(m.text), Value: m.value})
	}
	return out, nil
}

func overlaps(existing []dateMatch, m dateMatch) bool {
	for _, x := range existing {
		if m.start < x.end && x.start < m.end {
			return true
		}
	}
	return false
}

// parseOne resolves a single date expression. Month-first numeric dates are read
// directly; everything else goes through the natural language parser.
func (e *English) parseOne(text string, ref time.Time) (time.Time, bool, error) {
	if m := usDatePattern.FindString(text); m != "" {
		t, err := time.ParseInLocation(usDateLayout, m, ref.Location())
		if err == nil {
			return t, true, nil
		}
	}

	r, err := e.dates.Parse(text, ref)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse date: %w", err)
	}
	if r == nil {
		return time.Time{}, false, nil
	}
	return r.Time, true, nil
}
