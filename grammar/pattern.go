package grammar

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regex evaluation. Grammars in the wild carry
// patterns with catastrophic backtracking; a timed-out pattern is treated as
// a non-match rather than hanging the parse.
const matchTimeout = 250 * time.Millisecond

// Pattern is one compiled rule regex. The engine supports lookahead,
// lookbehind and the \G anchor, which binds to the position a search starts
// from; the interpreter always searches from the last match position, so \G
// keeps its TextMate meaning of "continue exactly here".
type Pattern struct {
	source  string
	re      *regexp2.Regexp
	backref bool // end/while pattern references begin captures, compile per push
}

// CompilePattern compiles src, with \1-\9 as ordinary self-backreferences
// (the quoted-string idiom `(["'])[^"']*\1`). An error here is a grammar
// construction failure; interpreters never see uncompiled patterns.
func CompilePattern(src string) (*Pattern, error) {
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", src, err)
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{source: src, re: re}, nil
}

// CompileClosePattern compiles an end or while pattern. There \1-\9 refer
// to the begin match's captures, so a pattern carrying them is compiled at
// push time instead, once those captures are known.
func CompileClosePattern(src string) (*Pattern, error) {
	if hasBackref(src) {
		return &Pattern{source: src, backref: true}, nil
	}
	return CompilePattern(src)
}

// MustPattern is CompilePattern for hand-built grammars in tests and tools.
func MustPattern(src string) *Pattern {
	p, err := CompilePattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the original regex text.
func (p *Pattern) Source() string { return p.source }

// HasBackref reports whether the pattern needs begin captures substituted
// before it can run (end patterns like `\1>` in HTML-style grammars).
func (p *Pattern) HasBackref() bool { return p.backref }

// Group is one capture group of a match. Start/End are byte offsets into
// the searched line; Matched is false for groups that did not participate.
type Group struct {
	Start, End int
	Text       string
	Matched    bool
}

// Match is the result of evaluating a Pattern against a line.
type Match struct {
	Start, End int
	Groups     []Group // indexed by capture group number, 0 = whole match
}

// Find searches line from pos and returns the leftmost match, or nil.
// Errors (only timeouts) degrade to non-match per the error policy.
func (p *Pattern) Find(line string, pos int) *Match {
	if p == nil || p.re == nil {
		return nil
	}
	m, err := p.re.FindStringMatchStartingAt(line, pos)
	if err != nil || m == nil {
		return nil
	}
	out := &Match{Start: m.Index, End: m.Index + m.Length}
	for _, g := range m.Groups() {
		grp := Group{}
		if len(g.Captures) > 0 {
			grp.Matched = true
			grp.Start = g.Index
			grp.End = g.Index + g.Length
			grp.Text = g.String()
		}
		out.Groups = append(out.Groups, grp)
	}
	return out
}

// Resolve returns a runnable pattern. For backref patterns it substitutes
// the begin match's capture texts into \1..\9 and compiles the result; a
// substituted pattern that fails to compile degrades to nil (non-matching).
func (p *Pattern) Resolve(begin *Match) *Pattern {
	if p == nil || !p.backref {
		return p
	}
	src := expandBackrefs(p.source, begin)
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{source: src, re: re}
}

func hasBackref(src string) bool {
	for i := 0; i+1 < len(src); i++ {
		if src[i] == '\\' {
			c := src[i+1]
			if c >= '1' && c <= '9' {
				return true
			}
			if c == '\\' {
				i++ // skip escaped backslash
			}
		}
	}
	return false
}

// expandBackrefs replaces \1..\9 with the quoted capture text from m.
// Unmatched groups expand to nothing, which mirrors how TextMate engines
// treat absent begin captures.
func expandBackrefs(src string, m *Match) string {
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		if src[i] == '\\' && i+1 < len(src) {
			c := src[i+1]
			if c >= '1' && c <= '9' {
				n := int(c - '0')
				if m != nil && n < len(m.Groups) && m.Groups[n].Matched {
					b.WriteString(regexp2.Escape(m.Groups[n].Text))
				}
				i++
				continue
			}
			if c == '\\' {
				b.WriteString(`\\`)
				i++
				continue
			}
		}
		b.WriteByte(src[i])
	}
	return b.String()
}
