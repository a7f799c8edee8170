package glob

import "testing"

// TestOctetGlobRules mirrors every boundary example spec.md §4.2 and §8
// name explicitly.
func TestOctetGlobRules(t *testing.T) {
	cases := []struct {
		pattern, target string
		want            bool
	}{
		{"foo", "foot", false},               // word boundary: "foo" is not "foot"
		{"foo*", "foot", true},               // trailing fragment wildcard
		{"foo*", "pfoo", false},              // wildcard doesn't admit a prefix
		{"foo * baz", "foo bar baz", true},   // standalone '*' skips one word
		{"foo * baz", "foo baz", false},      // no word present to skip
		{"foo*baz", "foonitzbaz", true},      // in-word fragment wildcard
		{"foo*baz", "foo/baz", false},        // wildcard does not cross a separator
		{`\(\-\:`, "(--:", false},            // escapes require byte adjacency
		{`\(\-\:`, "(-:", true},              // exact adjacent match succeeds
	}
	for _, c := range cases {
		got := Match(c.pattern, c.target)
		if got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.target, got, c.want)
		}
	}
}

func TestAnchors(t *testing.T) {
	if !Match("^foo", "foo bar") {
		t.Error("^foo should match at start of \"foo bar\"")
	}
	if Match("^foo", "xfoo bar") {
		t.Error("^foo should not match when foo isn't at the start")
	}
	if !Match("bar$", "foo bar") {
		t.Error("bar$ should match at end of \"foo bar\"")
	}
	if Match("bar$", "foo bar baz") {
		t.Error("bar$ should not match unless bar is the final word")
	}
	if !Match("^foo bar$", "foo bar") {
		t.Error("fully anchored pattern should match the whole string")
	}
}

func TestWhitespaceFuzzyMatchesPunctAndRuns(t *testing.T) {
	if !Match("foo bar", "foo   bar") {
		t.Error("pattern whitespace should match a longer run of target whitespace")
	}
	if !Match("foo bar", "foo, bar") {
		t.Error("pattern whitespace should match whitespace-or-punctuation in target")
	}
}

func TestPunctuationIsOptionalSeparator(t *testing.T) {
	if !Match("foo.bar", "foobar") {
		t.Error("pattern punctuation should be skippable when target has no separator")
	}
	if !Match("foo.bar", "foo-bar") {
		t.Error("pattern punctuation should match a differing target separator")
	}
}

func TestUnanchoredMatchesAnywhere(t *testing.T) {
	if !Match("bar", "foo bar baz") {
		t.Error("unanchored pattern should match a word anywhere in target")
	}
}
