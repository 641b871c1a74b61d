package patterns

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"Solvanity/pkg/config"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// Predicate decides whether an address is a vanity match.
//
// Match has no side effects. A Predicate value may be shared read-only, but
// each worker should call Clone to get its own copy.
type Predicate interface {
	Match(addr string) (bool, error)
	Clone() Predicate
	Kind() config.Mode
}

// Spec carries the mode and its parameters before compilation.
type Spec struct {
	Mode       config.Mode
	Pattern    string
	Word       string
	IgnoreCase bool
	Count      int

	// RegexTimeout bounds a single regex evaluation; 0 means no limit.
	RegexTimeout time.Duration
}

// SpecFrom extracts the predicate part of a search config.
func SpecFrom(c *config.SearchConfig) Spec {
	return Spec{
		Mode:       c.Mode,
		Pattern:    c.Pattern,
		Word:       c.Word,
		IgnoreCase: c.IgnoreCase,
		Count:      c.Count,

		RegexTimeout: c.RegexTimeout,
	}
}

// New validates s and builds its predicate. Every failure wraps config.ErrInvalidConfig.
func New(s Spec) (Predicate, error) {
	switch s.Mode {
	case config.ModeRegex:
		if s.Pattern == "" {
			return nil, fmt.Errorf("%w: regex mode requires a pattern", config.ErrInvalidConfig)
		}
		re, err := regexp2.Compile(s.Pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("%w: compile pattern %q: %v", config.ErrInvalidConfig, s.Pattern, err)
		}
		if s.RegexTimeout > 0 {
			re.MatchTimeout = s.RegexTimeout
		}
		return &Regex{re: re}, nil
	case config.ModePrefix, config.ModeSuffix:
		if s.Word == "" {
			return nil, fmt.Errorf("%w: %s mode requires a word", config.ErrInvalidConfig, s.Mode)
		}
		return newEdge(s.Mode == config.ModeSuffix, s.Word, s.IgnoreCase), nil
	case config.ModeRepeating:
		if s.Count < 1 {
			return nil, fmt.Errorf("%w: repeating mode requires count >= 1", config.ErrInvalidConfig)
		}
		return Repeating{MinCount: s.Count}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", config.ErrInvalidConfig, s.Mode)
	}
}

// Regex matches when the pattern occurs anywhere in the address.
type Regex struct {
	re *regexp2.Regexp
}

func (r *Regex) Match(addr string) (bool, error) {
	return r.re.MatchString(addr)
}

// Clone shares the compiled program, which regexp2 allows across goroutines.
func (r *Regex) Clone() Predicate { return &Regex{re: r.re} }

func (r *Regex) Kind() config.Mode { return config.ModeRegex }

func (r *Regex) String() string { return r.re.String() }

// Edge is the prefix/suffix predicate.
type Edge struct {
	suffix     bool
	word       string
	ignoreCase bool
	fold       cases.Caser
}

func newEdge(suffix bool, word string, ignoreCase bool) *Edge {
	e := &Edge{suffix: suffix, word: word, ignoreCase: ignoreCase}
	if ignoreCase {
		e.fold = cases.Fold()
		e.word = e.fold.String(word)
	}
	return e
}

func (e *Edge) Match(addr string) (bool, error) {
	check := addr
	if e.ignoreCase {
		check = e.fold.String(addr)
	}
	if e.suffix {
		return strings.HasSuffix(check, e.word), nil
	}
	return strings.HasPrefix(check, e.word), nil
}

// Clone gets a fresh Caser: a cases.Caser keeps state and must not be shared.
func (e *Edge) Clone() Predicate {
	c := *e
	if c.ignoreCase {
		c.fold = cases.Fold()
	}
	return &c
}

func (e *Edge) Kind() config.Mode {
	if e.suffix {
		return config.ModeSuffix
	}
	return config.ModePrefix
}

// Repeating matches when the leading character repeats at least MinCount times.
type Repeating struct {
	MinCount int
}

func (r Repeating) Match(addr string) (bool, error) {
	return runLenPrefix(addr) >= r.MinCount, nil
}

func (r Repeating) Clone() Predicate { return r }

func (r Repeating) Kind() config.Mode { return config.ModeRepeating }

func runLenPrefix(s string) int {
	if s == "" {
		return 0
	}
	first, size := utf8.DecodeRuneInString(s)
	n := 1
	for _, c := range s[size:] {
		if c != first {
			break
		}
		n++
	}
	return n
}
