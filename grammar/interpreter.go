package grammar

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Token is one scope-tagged span. Start is a byte offset into the whole
// document; the Scopes snapshot is immutable.
type Token struct {
	Start  int
	Length int
	Scopes ScopeStack
}

// InjectionPoint is a byte range whose highlighting is delegated to another
// grammar. Prefix is the host's scope stack at the opening delimiter; the
// resolver prepends it to every span the target produces for the range.
type InjectionPoint struct {
	Start, End int
	Source     string // host grammar name
	Target     string // target grammar or capture-source name
	Prefix     ScopeStack
	Depth      int // filled in by the resolver while recursing
}

// Interpreter walks one document through one Grammar, line by line. It is
// single-use: construct a fresh one per parse. Grammars are shared
// read-only; all mutable state lives here.
type Interpreter struct {
	g      *Grammar
	stack  []frame
	offset int // document offset of the next line's first byte
	open   *InjectionPoint
}

type frame struct {
	rule     *Rule
	end      *Pattern // resolved against begin captures at push time
	while    *Pattern
	scopes   ScopeStack // stack including the rule's own scope
	content  ScopeStack // scopes plus contentName, for inner tokens
	beginPos int        // document offset of the begin match, loop guard
	embed    string
}

// NewInterpreter starts a parse of g at document offset zero.
func NewInterpreter(g *Grammar) *Interpreter {
	base := ScopeStack{}.Push(g.Name)
	return &Interpreter{
		g: g,
		stack: []frame{{
			rule:    g.Root,
			scopes:  base,
			content: base,
		}},
	}
}

// Stack returns the current scope stack, for callers that need the context
// at a line boundary (per-line theme overrides).
func (it *Interpreter) Stack() ScopeStack {
	return it.top().content
}

func (it *Interpreter) top() *frame { return &it.stack[len(it.stack)-1] }

// AdvanceLine consumes one line (including its trailing newline, if any)
// and returns the ordered tokens covering it plus any injection ranges that
// closed during the line. Tokens from one parse are non-overlapping,
// ordered, and jointly cover every byte of the input.
func (it *Interpreter) AdvanceLine(line string) ([]Token, []InjectionPoint) {
	lineStart := it.offset
	it.offset += len(line)

	var toks []Token
	var injs []InjectionPoint

	pos := 0
	if it.open == nil {
		pos = it.checkWhile(line, lineStart, &toks)
	}

	for pos < len(line) {
		prevPos, prevDepth := pos, len(it.stack)
		top := it.top()

		if top.embed != "" {
			m := top.end.Find(line, pos)
			if m == nil {
				it.emit(&toks, lineStart+pos, len(line)-pos, top.content)
				pos = len(line)
				break
			}
			it.emit(&toks, lineStart+pos, m.Start-pos, top.content)
			it.open.End = lineStart + m.Start
			injs = append(injs, *it.open)
			it.open = nil
			it.emitCaptured(&toks, lineStart, m, top.scopes, top.rule.EndCaptures)
			it.stack = it.stack[:len(it.stack)-1]
			pos = m.End
			if pos == prevPos && len(it.stack) == prevDepth {
				pos = it.forceProgress(&toks, line, lineStart, pos)
			}
			continue
		}

		kind, rule, m := it.bestCandidate(line, pos)
		if m == nil {
			it.emit(&toks, lineStart+pos, len(line)-pos, top.content)
			pos = len(line)
			break
		}
		it.emit(&toks, lineStart+pos, m.Start-pos, top.content)

		switch kind {
		case candEnd:
			it.emitCaptured(&toks, lineStart, m, top.scopes, top.rule.EndCaptures)
			it.stack = it.stack[:len(it.stack)-1]
			pos = m.End

		case candMatch:
			it.emitCaptured(&toks, lineStart, m, top.content.Push(rule.Scope), rule.Captures)
			pos = m.End

		case candBegin:
			if m.End == m.Start && it.alreadyOpen(rule, lineStart+m.Start) {
				// Zero-width begin re-opening a rule at the same position
				// would grow the stack forever.
				pos = it.forceProgress(&toks, line, lineStart, pos)
				continue
			}
			scopes := top.content.Push(rule.Scope)
			it.emitCaptured(&toks, lineStart, m, scopes, rule.BeginCaptures)
			f := frame{
				rule:     rule,
				scopes:   scopes,
				content:  scopes.Push(rule.ContentScope),
				beginPos: lineStart + m.Start,
				embed:    rule.Embed,
			}
			if rule.End != nil {
				f.end = rule.End.Resolve(m)
			}
			if rule.While != nil {
				f.while = rule.While.Resolve(m)
			}
			it.stack = append(it.stack, f)
			if rule.Embed != "" {
				it.open = &InjectionPoint{
					Start:  lineStart + m.End,
					Source: it.g.Name,
					Target: rule.Embed,
					Prefix: f.content,
				}
			}
			pos = m.End
		}

		if pos == prevPos && len(it.stack) == prevDepth {
			pos = it.forceProgress(&toks, line, lineStart, pos)
		}
	}

	return toks, injs
}

// Finish closes the parse, returning any injection range still open at end
// of input.
func (it *Interpreter) Finish() []InjectionPoint {
	if it.open == nil {
		return nil
	}
	it.open.End = it.offset
	out := []InjectionPoint{*it.open}
	it.open = nil
	return out
}

// checkWhile re-evaluates the while condition of every open while rule at
// the start of the line, outermost first. A failed condition pops its rule
// and everything above it without consuming characters; successful
// conditions consume their match.
func (it *Interpreter) checkWhile(line string, lineStart int, toks *[]Token) int {
	pos := 0
	for i := 1; i < len(it.stack); i++ {
		f := &it.stack[i]
		if f.while == nil {
			continue
		}
		m := f.while.Find(line, pos)
		if m == nil || m.Start != pos {
			it.stack = it.stack[:i]
			return pos
		}
		it.emitCaptured(toks, lineStart, m, f.scopes, f.rule.WhileCaptures)
		pos = m.End
	}
	return pos
}

type candKind int

const (
	candEnd candKind = iota
	candMatch
	candBegin
)

// bestCandidate evaluates the top rule's end pattern, its child patterns,
// and any applicable injections at pos, returning the earliest match. Ties
// go to the end pattern first, then document order.
func (it *Interpreter) bestCandidate(line string, pos int) (candKind, *Rule, *Match) {
	top := it.top()

	var bestKind candKind
	var bestRule *Rule
	var best *Match

	if top.end != nil {
		best = top.end.Find(line, pos)
		bestKind = candEnd
		bestRule = top.rule
	}

	rules := it.g.children(top.rule)
	for _, inj := range it.g.Injections {
		if inj.Rule == nil || !MatchSelector(inj.Selector, top.content) {
			continue
		}
		if inj.Rule.isContainer() {
			rules = append(rules, it.g.children(inj.Rule)...)
		} else {
			rules = append(rules, inj.Rule)
		}
	}

	for _, r := range rules {
		var pat *Pattern
		kind := candMatch
		switch {
		case r.Match != nil:
			pat = r.Match
		case r.Begin != nil:
			pat = r.Begin
			kind = candBegin
		default:
			continue
		}
		m := pat.Find(line, pos)
		if m == nil {
			continue
		}
		if best == nil || m.Start < best.Start {
			best, bestKind, bestRule = m, kind, r
		}
		if best != nil && best.Start == pos {
			// Nothing can start earlier than the current position.
			break
		}
	}
	return bestKind, bestRule, best
}

// alreadyOpen reports whether rule has an open frame begun at document
// offset pos. The whole stack is scanned, not just the top: two zero-width
// begins that push each other alternate the top frame while the position
// never moves, and each re-push must still be caught.
func (it *Interpreter) alreadyOpen(rule *Rule, pos int) bool {
	for i := len(it.stack) - 1; i > 0; i-- {
		if it.stack[i].rule == rule && it.stack[i].beginPos == pos {
			return true
		}
	}
	return false
}

// forceProgress consumes one byte as unscoped content. Keeps zero-width
// matches from stalling the parse; never reported as an error.
func (it *Interpreter) forceProgress(toks *[]Token, line string, lineStart, pos int) int {
	if pos >= len(line) {
		return pos
	}
	log.Debug().Str("grammar", it.g.Name).Int("offset", lineStart+pos).
		Msg("zero-width match, forcing one byte of progress")
	it.emit(toks, lineStart+pos, 1, it.top().content)
	return pos + 1
}

// emit appends one token, dropping zero-length spans.
func (it *Interpreter) emit(toks *[]Token, start, length int, scopes ScopeStack) {
	if length <= 0 {
		return
	}
	*toks = append(*toks, Token{Start: start, Length: length, Scopes: scopes})
}

// emitCaptured emits the tokens for one pattern match, splitting the
// matched range along its capture groups. Group 0 widens the base scope;
// other groups scope their own sub-ranges, nesting where ranges nest.
func (it *Interpreter) emitCaptured(toks *[]Token, lineStart int, m *Match, base ScopeStack, caps map[int]string) {
	if m.End <= m.Start {
		return
	}
	if len(caps) == 0 {
		it.emit(toks, lineStart+m.Start, m.End-m.Start, base)
		return
	}

	type capSpan struct {
		start, end, idx int
		scope           string
	}
	var spans []capSpan
	idxs := make([]int, 0, len(caps))
	for idx := range caps {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	for _, idx := range idxs {
		scope := caps[idx]
		if scope == "" {
			continue
		}
		if idx == 0 {
			base = base.Push(scope)
			continue
		}
		if idx >= len(m.Groups) {
			continue
		}
		g := m.Groups[idx]
		if !g.Matched || g.End <= g.Start || g.Start < m.Start || g.End > m.End {
			continue
		}
		spans = append(spans, capSpan{start: g.Start, end: g.End, idx: idx, scope: scope})
	}
	if len(spans) == 0 {
		it.emit(toks, lineStart+m.Start, m.End-m.Start, base)
		return
	}

	// Outer-before-inner so nested captures stack in range order.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		if spans[i].end != spans[j].end {
			return spans[i].end > spans[j].end
		}
		return spans[i].idx < spans[j].idx
	})

	bounds := []int{m.Start, m.End}
	for _, cs := range spans {
		bounds = append(bounds, cs.start, cs.end)
	}
	sort.Ints(bounds)

	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		if a >= b {
			continue
		}
		stack := base
		for _, cs := range spans {
			if cs.start <= a && b <= cs.end {
				stack = stack.Push(cs.scope)
			}
		}
		it.emit(toks, lineStart+a, b-a, stack)
	}
}
