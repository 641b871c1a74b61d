package patterns

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"Solvanity/pkg/config"
)

func mustNew(t *testing.T, s Spec) Predicate {
	t.Helper()
	p, err := New(s)
	if err != nil {
		t.Fatalf("New(%+v): %v", s, err)
	}
	return p
}

func match(t *testing.T, p Predicate, addr string) bool {
	t.Helper()
	ok, err := p.Match(addr)
	if err != nil {
		t.Fatalf("Match(%q): %v", addr, err)
	}
	return ok
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		addr string
		want bool
	}{
		{"prefix literal", Spec{Mode: config.ModePrefix, Word: "ABC"}, "ABCdef", true},
		{"prefix case sensitive", Spec{Mode: config.ModePrefix, Word: "ABC"}, "abcdef", false},
		{"prefix ignore case", Spec{Mode: config.ModePrefix, Word: "ABC", IgnoreCase: true}, "abcdef", true},
		{"prefix longer than addr", Spec{Mode: config.ModePrefix, Word: "ABCDEFG"}, "ABC", false},
		{"suffix literal", Spec{Mode: config.ModeSuffix, Word: "pump"}, "9xQpump", true},
		{"suffix case sensitive", Spec{Mode: config.ModeSuffix, Word: "pump"}, "9xQPUMP", false},
		{"suffix ignore case", Spec{Mode: config.ModeSuffix, Word: "pump", IgnoreCase: true}, "9xQPuMp", true},
		{"repeating 3", Spec{Mode: config.ModeRepeating, Count: 3}, "aaabc", true},
		{"repeating 4", Spec{Mode: config.ModeRepeating, Count: 4}, "aaabc", false},
		{"repeating empty", Spec{Mode: config.ModeRepeating, Count: 1}, "", false},
		{"repeating single", Spec{Mode: config.ModeRepeating, Count: 1}, "x", true},
		{"repeating whole string", Spec{Mode: config.ModeRepeating, Count: 5}, "zzzzz", true},
		{"regex anchored match", Spec{Mode: config.ModeRegex, Pattern: "^A.*Z$"}, "AxyzZ", true},
		{"regex anchored miss", Spec{Mode: config.ModeRegex, Pattern: "^A.*Z$"}, "AxyzY", false},
		{"regex unanchored", Spec{Mode: config.ModeRegex, Pattern: "moon"}, "12moon34", true},
		{"regex lookahead", Spec{Mode: config.ModeRegex, Pattern: `^(?=.*Sol)(?=.*Dev)`}, "xxDevyySolzz", true},
		{"regex negative lookahead", Spec{Mode: config.ModeRegex, Pattern: `^(?!1)`}, "1abc", false},
		{"regex backreference", Spec{Mode: config.ModeRegex, Pattern: `^(.)\1\1`}, "777abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustNew(t, tt.spec)
			if got := match(t, p, tt.addr); got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.addr, got, tt.want)
			}
			if got := match(t, p.Clone(), tt.addr); got != tt.want {
				t.Fatalf("clone Match(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestPrefixIsLiteralStartsWith(t *testing.T) {
	words := []string{"1", "So", "a.c", "[x]", "Ab"}
	addrs := []string{"1So", "Sol", "a.cd", "abcd", "[x]y", "AbAb", ""}
	for _, w := range words {
		p := mustNew(t, Spec{Mode: config.ModePrefix, Word: w})
		for _, a := range addrs {
			if got, want := match(t, p, a), strings.HasPrefix(a, w); got != want {
				t.Errorf("Prefix(%q).Match(%q) = %v, want %v", w, a, got, want)
			}
		}
	}
}

func TestNewRejectsBadSpecs(t *testing.T) {
	bad := []Spec{
		{Mode: config.ModeRegex},
		{Mode: config.ModeRegex, Pattern: "(unclosed"},
		{Mode: config.ModePrefix},
		{Mode: config.ModeSuffix},
		{Mode: config.ModeRepeating},
		{Mode: "glob", Word: "x"},
	}
	for _, s := range bad {
		if _, err := New(s); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("New(%+v) err = %v, want ErrInvalidConfig", s, err)
		}
	}
}

func TestSpecFrom(t *testing.T) {
	c := config.Default()
	c.Mode = config.ModeSuffix
	c.Word = "xyz"
	c.IgnoreCase = true
	s := SpecFrom(&c)
	if s.Mode != config.ModeSuffix || s.Word != "xyz" || !s.IgnoreCase {
		t.Fatalf("unexpected spec: %+v", s)
	}
	p := mustNew(t, s)
	if p.Kind() != config.ModeSuffix {
		t.Fatalf("kind = %s", p.Kind())
	}
}

func TestClonesAreIndependentUnderConcurrency(t *testing.T) {
	base := mustNew(t, Spec{Mode: config.ModePrefix, Word: "AbC", IgnoreCase: true})
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := base.Clone()
			for j := 0; j < 1000; j++ {
				ok, err := p.Match("aBcDeF")
				if err != nil || !ok {
					errs <- "clone failed to match"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}
