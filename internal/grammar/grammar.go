// Package grammar holds the tokenization grammar for Sheet notation: an
// immutable table of named states, each an ordered list of rules. A tokenizer
// in some state tries that state's rules in order at its current offset and
// uses the first one whose pattern matches there.
//
// The grammar is built once with Build (or Sheet, which caches the result and
// panics on failure) and is safe for concurrent read access afterwards.
package grammar

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/dekarrin/sheetlex/internal/util"
	"github.com/dekarrin/sheetlex/internal/vocab"
)

// StartState is the name of the initial state of every grammar.
const StartState = "start"

// MatchContext is everything a derived classifier may look at when computing
// the class of a match.
type MatchContext struct {
	// Text is the matched text.
	Text string

	// State is the name of the state the rule belongs to.
	State string

	// Stack is the state stack. Sheet states nest structurally, so the engine
	// in this module always passes nil.
	Stack []string

	// Line is the full text of the line being tokenized.
	Line string

	// Pos is the byte offset in Line at which the match starts.
	Pos int
}

// Classifier produces the class of a token from a match. It is either a fixed
// string or a function of the match. The zero value is Fixed("").
type Classifier struct {
	fixed  string
	name   string
	derive func(MatchContext) string
}

// Fixed returns a Classifier that always gives class.
func Fixed(class string) Classifier {
	return Classifier{fixed: class}
}

// Derived returns a Classifier that calls fn on every match. The name is only
// used for display.
func Derived(name string, fn func(MatchContext) string) Classifier {
	return Classifier{name: name, derive: fn}
}

// IsDerived returns whether the class is computed from the match.
func (c Classifier) IsDerived() bool {
	return c.derive != nil
}

// Classify returns the class for the given match.
func (c Classifier) Classify(ctx MatchContext) string {
	if c.derive != nil {
		return c.derive(ctx)
	}
	return c.fixed
}

// String gives the fixed class, or "func:NAME" for a derived one.
func (c Classifier) String() string {
	if c.derive != nil {
		return "func:" + c.name
	}
	return c.fixed
}

// Rule is a single pattern within a State.
type Rule struct {
	token Classifier
	src   string
	pat   *regexp.Regexp
	next  string
}

// Classifier returns the classifier of the rule.
func (r Rule) Classifier() Classifier {
	return r.token
}

// Pattern returns the source of the regular expression of the rule, without
// the anchoring added for matching.
func (r Rule) Pattern() string {
	return r.src
}

// Next returns the state to move to after the rule matches. An empty string
// means to stay in the current state.
func (r Rule) Next() string {
	return r.next
}

// Match checks whether the rule matches line starting exactly at offset. It
// returns the length in bytes of the match; zero-length matches are allowed.
func (r Rule) Match(line string, offset int) (length int, ok bool) {
	if offset > len(line) {
		return 0, false
	}
	loc := r.pat.FindStringIndex(line[offset:])
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}

// State is a named, ordered list of rules.
type State struct {
	name  string
	rules []Rule
}

// Name returns the name of the state.
func (s State) Name() string {
	return s.name
}

// Len returns the number of rules in the state.
func (s State) Len() int {
	return len(s.rules)
}

// Rule returns the i-th rule in the state.
func (s State) Rule(i int) Rule {
	return s.rules[i]
}

// Rules returns a copy of the rules of the state in priority order.
func (s State) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Grammar is a complete mapping of state names to states.
type Grammar struct {
	states map[string]State
	start  string
}

// Start returns the name of the initial state.
func (g *Grammar) Start() string {
	return g.start
}

// State returns the state with the given name.
func (g *Grammar) State(name string) (State, bool) {
	s, ok := g.states[name]
	return s, ok
}

// Has returns whether the grammar defines the named state.
func (g *Grammar) Has(name string) bool {
	_, ok := g.states[name]
	return ok
}

// States returns the names of all states in the grammar, sorted.
func (g *Grammar) States() []string {
	return util.OrderedKeys(g.states)
}

// ruleSpec is an uncompiled rule. Tables of ruleSpec are what the base states
// and the comment overlay produce; compile turns them into a Grammar.
type ruleSpec struct {
	pattern string
	token   Classifier
	next    string
}

type table map[string][]ruleSpec

func (t table) stateNames() []string {
	return util.OrderedKeys(t)
}

// compile checks every construction invariant of the table and gives the
// resulting Grammar.
func compile(t table, start string) (*Grammar, error) {
	if _, ok := t[start]; !ok {
		return nil, defErrorf("", -1, "start state %q is not defined", start)
	}

	g := &Grammar{
		states: make(map[string]State, len(t)),
		start:  start,
	}

	for _, name := range t.stateNames() {
		specs := t[name]
		st := State{name: name, rules: make([]Rule, len(specs))}

		for i, spec := range specs {
			compiled, err := regexp.Compile("^(?:" + spec.pattern + ")")
			if err != nil {
				return nil, wrapDefError(err, name, i, "cannot compile regex")
			}
			if spec.next != "" {
				if _, ok := t[spec.next]; !ok {
					return nil, defErrorf(name, i, "next state %q is not defined", spec.next)
				}
			} else if compiled.MatchString("") {
				return nil, defErrorf(name, i, "pattern %q can match empty text but does not change state", spec.pattern)
			}

			st.rules[i] = Rule{
				token: spec.token,
				src:   spec.pattern,
				pat:   compiled,
				next:  spec.next,
			}
		}

		g.states[name] = st
	}

	return g, nil
}

// Build constructs the Sheet grammar: the base states, with the comment
// overlay applied once over all of them.
func Build() (*Grammar, error) {
	frags, err := vocab.Build()
	if err != nil {
		return nil, wrapDefError(err, "", -1, "vocabulary")
	}

	return compile(withComments(sheetTable(frags)), StartState)
}

var (
	sheetOnce    sync.Once
	sheetGrammar *Grammar
)

// Sheet returns the process-wide Sheet grammar, building it on first use. It
// panics if the grammar is invalid, since that can only be caused by a bug in
// the rule table.
func Sheet() *Grammar {
	sheetOnce.Do(func() {
		g, err := Build()
		if err != nil {
			panic(fmt.Sprintf("building sheet grammar: %s", err))
		}
		sheetGrammar = g
	})
	return sheetGrammar
}
