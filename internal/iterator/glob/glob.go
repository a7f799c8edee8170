// Package glob implements the octet comparator's glob matcher (spec.md
// §4.2): a case-sensitive pattern language with word-boundary-aware
// matching, fuzzy separator handling, and a fragment wildcard. It is
// listed among spec.md §1's external "comparator/glob-match lexical
// helpers," but spec.md §4.2 and §8 both specify and test its exact
// rules directly, so it gets a real, tested implementation here rather
// than a stub (DESIGN.md).
//
// There is no regexp-based shortcut: RE2 has no construct for "pattern
// punctuation is an optional separator" or "adjacent escapes forbid
// separator insertion," so this is a hand-written scanner/backtracker,
// the same shape as a small recursive-descent glob engine.
package glob

// Match reports whether target satisfies pattern under the octet
// comparator's glob rules:
//
//   - ^ and $ anchor to start/end; default is unanchored.
//   - whitespace in pattern requires a run of whitespace-or-punctuation
//     in target.
//   - unescaped punctuation in pattern is an optional separator: it may
//     match a run of whitespace-or-punctuation in target, or nothing.
//   - outside of escapes, pattern content is grouped into word tokens at
//     whitespace/punctuation boundaries; an unanchored word token must
//     start and end at a word boundary in target.
//   - '*' used as a whole word token skips exactly one whole word; '*'
//     used inside a word token is a fragment wildcard bridging the rest
//     of that one word.
//   - \x matches the literal byte x; a run of escapes must match
//     adjacent bytes in target, with no separator insertion allowed
//     between them.
func Match(pattern, target string) bool {
	toks, anchoredStart, anchoredEnd := lex(pattern)
	if anchoredStart {
		return matchFrom(toks, 0, target, 0, anchoredEnd)
	}
	for start := 0; start <= len(target); start++ {
		if matchFrom(toks, 0, target, start, anchoredEnd) {
			return true
		}
	}
	return false
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokSkipWord
	tokSep
)

type wordPart struct {
	lit      byte
	wildcard bool
}

type token struct {
	kind      tokenKind
	parts     []wordPart // tokWord only
	boundary  bool       // tokWord only: enforce word-boundary start/end
	mandatory bool       // tokSep only: whitespace (true) vs punctuation (false)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// isPunct classifies printable ASCII that is neither whitespace nor a
// word byte.
func isPunct(b byte) bool {
	return b >= 0x21 && b <= 0x7e && !isWordByte(b)
}

func isSeparatorClass(b byte) bool {
	return isSpace(b) || isPunct(b)
}

// lex tokenizes pattern into word/skipWord/sep tokens plus start/end
// anchor flags.
func lex(pattern string) (toks []token, anchoredStart, anchoredEnd bool) {
	lo, hi := 0, len(pattern)
	if lo < hi && pattern[lo] == '^' {
		anchoredStart = true
		lo++
	}
	if hi > lo && pattern[hi-1] == '$' && (hi-2 < lo || pattern[hi-2] != '\\') {
		anchoredEnd = true
		hi--
	}
	s := pattern[lo:hi]

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(c):
			j := i
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokSep, mandatory: true})
			i = j
		case c == '\\' || c == '*' || isWordByte(c):
			var t token
			t, i = lexWord(s, i)
			toks = append(toks, t)
		default: // unescaped punctuation
			toks = append(toks, token{kind: tokSep, mandatory: false})
			i++
		}
	}
	return toks, anchoredStart, anchoredEnd
}

// lexWord consumes one word token starting at i: a run of literal word
// bytes, escaped bytes, and '*' wildcards, stopping at the first
// unescaped whitespace or punctuation byte.
func lexWord(s string, i int) (token, int) {
	var parts []wordPart
	boundary := false
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			lit := s[i+1]
			parts = append(parts, wordPart{lit: lit})
			if isWordByte(lit) {
				boundary = true
			}
			i += 2
		case c == '*':
			parts = append(parts, wordPart{wildcard: true})
			boundary = true
			i++
		case isWordByte(c):
			parts = append(parts, wordPart{lit: c})
			boundary = true
			i++
		default:
			if len(parts) == 1 && parts[0].wildcard {
				return token{kind: tokSkipWord}, i
			}
			return token{kind: tokWord, parts: parts, boundary: boundary}, i
		}
	}
	if len(parts) == 1 && parts[0].wildcard {
		return token{kind: tokSkipWord}, i
	}
	return token{kind: tokWord, parts: parts, boundary: boundary}, i
}

// matchFrom matches toks[ti:] against target starting at byte offset
// pos.
func matchFrom(toks []token, ti int, target string, pos int, anchoredEnd bool) bool {
	if ti == len(toks) {
		if anchoredEnd {
			return pos == len(target)
		}
		return true
	}

	t := toks[ti]
	switch t.kind {
	case tokSep:
		min := 0
		if t.mandatory {
			min = 1
		}
		end := pos
		for end < len(target) && isSeparatorClass(target[end]) {
			end++
		}
		if end-pos < min {
			return false
		}
		for c := end; c >= pos+min; c-- {
			if matchFrom(toks, ti+1, target, c, anchoredEnd) {
				return true
			}
		}
		return false

	case tokSkipWord:
		if pos != 0 && !isSeparatorClass(target[pos-1]) {
			return false
		}
		end := pos
		for end < len(target) && !isSeparatorClass(target[end]) {
			end++
		}
		if end == pos {
			return false
		}
		return matchFrom(toks, ti+1, target, end, anchoredEnd)

	case tokWord:
		if t.boundary && pos != 0 && !isSeparatorClass(target[pos-1]) &&
			!(ti > 0 && toks[ti-1].kind == tokSep && !toks[ti-1].mandatory) {
			return false
		}
		return matchWordParts(t.parts, 0, target, pos, func(newPos int) bool {
			if t.boundary && !(newPos == len(target) || isSeparatorClass(target[newPos])) &&
				!(ti+1 < len(toks) && toks[ti+1].kind == tokSep && !toks[ti+1].mandatory) {
				return false
			}
			return matchFrom(toks, ti+1, target, newPos, anchoredEnd)
		})
	}
	return false
}

// matchWordParts matches parts[pi:] against target starting at p,
// invoking final once the whole part list has been consumed.
func matchWordParts(parts []wordPart, pi int, target string, p int, final func(int) bool) bool {
	if pi == len(parts) {
		return final(p)
	}
	part := parts[pi]
	if !part.wildcard {
		if p >= len(target) || target[p] != part.lit {
			return false
		}
		return matchWordParts(parts, pi+1, target, p+1, final)
	}

	maxEnd := p
	for maxEnd < len(target) && !isSeparatorClass(target[maxEnd]) {
		maxEnd++
	}
	for end := maxEnd; end >= p; end-- {
		if matchWordParts(parts, pi+1, target, end, final) {
			return true
		}
	}
	return false
}
