package recognizers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/promptflow/pkg/ports"
)

var tokenPattern = regexp.MustCompile(`(?i)-?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?|[a-z]+`)

var units = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]float64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scales = map[string]float64{
	"thousand": 1e3, "million": 1e6, "billion": 1e9,
}

type token struct {
	text       string
	lower      string
	start, end int
}

func tokenize(text string) []token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	out := make([]token, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		// "25-21" is two numbers, not 25 and -21.
		if text[start] == '-' && start > 0 && isAlnum(text[start-1]) {
			start++
		}
		s := text[start:end]
		out = append(out, token{text: s, lower: strings.ToLower(s), start: start, end: end})
	}
	return out
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isDigits(s string) bool {
	return s != "" && (s[0] == '-' || s[0] >= '0' && s[0] <= '9')
}

func isUnit(s string) bool {
	_, ok := units[s]
	return ok
}

func isNumberWord(s string) bool {
	_, u := units[s]
	_, t := tens[s]
	_, sc := scales[s]
	return u || t || sc || s == "hundred" || s == "dozen"
}

// phrase accumulates a spelled-out number.
type phrase struct {
	total, current float64
	start, end     int
	active         bool
	lastUnit       bool // a unit closes the current group
	lastTens       bool
	negative       bool
}

func (p *phrase) begin(start int) {
	if !p.active {
		*p = phrase{active: true, start: start}
	}
}

func (p *phrase) value() float64 {
	if p.negative {
		return -(p.total + p.current)
	}
	return p.total + p.current
}

func isSignWord(s string) bool {
	return s == "minus" || s == "negative"
}

// parseNumbers scans text left to right and returns numeric candidates in order.
func parseNumbers(text string) []ports.NumberResult {
	tokens := tokenize(text)
	var (
		out []ports.NumberResult
		p   phrase

		// signStart is the offset of a "minus"/"negative" that applies to the next number, or -1.
		signStart = -1
	)

	flush := func() {
		if p.active {
			out = append(out, ports.NumberResult{Text: text[p.start:p.end], Value: p.value()})
		}
		p = phrase{}
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		w := tok.lower

		if isSignWord(w) {
			flush()
			signStart = -1
			if i+1 < len(tokens) && (isDigits(tokens[i+1].text) || isNumberWord(tokens[i+1].lower)) {
				signStart = tok.start
			}
			continue
		}

		if isDigits(tok.text) {
			flush()
			v, err := strconv.ParseFloat(strings.ReplaceAll(tok.text, ",", ""), 64)
			if err == nil {
				start := tok.start
				if signStart >= 0 {
					start, v = signStart, -v
				}
				out = append(out, ports.NumberResult{Text: text[start:tok.end], Value: v})
			}
			signStart = -1
			continue
		}

		if signStart >= 0 && isNumberWord(w) && !p.active {
			p.begin(tok.start)
			p.start, p.negative = signStart, true
			signStart = -1
		}

		switch {
		case isUnit(w):
			if p.active && p.lastUnit {
				flush()
			}
			p.begin(tok.start)
			p.current += units[w]
			p.end = tok.end
			p.lastUnit, p.lastTens = true, false

		case tens[w] != 0:
			if p.active && (p.lastUnit || p.lastTens) {
				flush()
			}
			p.begin(tok.start)
			p.current += tens[w]
			p.end = tok.end
			p.lastUnit, p.lastTens = false, true

		case w == "hundred":
			p.begin(tok.start)
			if p.current == 0 {
				p.current = 1
			}
			p.current *= 100
			p.end = tok.end
			p.lastUnit, p.lastTens = false, false

		case w == "dozen":
			p.begin(tok.start)
			if p.current == 0 {
				p.current = 1
			}
			p.current *= 12
			p.end = tok.end
			p.lastUnit, p.lastTens = true, false

		case scales[w] != 0:
			p.begin(tok.start)
			if p.current == 0 {
				p.current = 1
			}
			p.total += p.current * scales[w]
			p.current = 0
			p.end = tok.end
			p.lastUnit, p.lastTens = false, false

		case w == "a" || w == "an":
			// "a dozen", "a hundred"
			if i+1 < len(tokens) && (tokens[i+1].lower == "dozen" || tokens[i+1].lower == "hundred" || scales[tokens[i+1].lower] != 0) {
				flush()
				p.begin(tok.start)
				p.current = 1
				p.end = tok.end
				p.lastUnit, p.lastTens = false, false
				continue
			}
			flush()

		case w == "and" && p.active:
			// "two and a half"
			if i+2 < len(tokens) && (tokens[i+1].lower == "a" || tokens[i+1].lower == "one") && tokens[i+2].lower == "half" {
				p.current += 0.5
				p.end = tokens[i+2].end
				i += 2
				flush()
				continue
			}
			// "one hundred and four"
			if i+1 < len(tokens) && isNumberWord(tokens[i+1].lower) && !p.lastUnit {
				continue
			}
			flush()

		default:
			flush()
		}
	}
	flush()
	return out
}
