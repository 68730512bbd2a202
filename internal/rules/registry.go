package rules

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds rules sorted by code. Rule packages register into the
// default registry from init (see internal/rules/all).
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) find(code string) (int, bool) {
	return slices.BinarySearchFunc(r.rules, code, func(rule Rule, code string) int {
		return strings.Compare(rule.Metadata().Code, code)
	})
}

// Register adds rule and panics when its code is taken.
func (r *Registry) Register(rule Rule) {
	code := rule.Metadata().Code
	r.mu.Lock()
	defer r.mu.Unlock()
	i, dup := r.find(code)
	if dup {
		panic(fmt.Sprintf("rule %q already registered", code))
	}
	r.rules = slices.Insert(r.rules, i, rule)
}

// Get returns the rule registered under code, or nil.
func (r *Registry) Get(code string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.find(code); ok {
		return r.rules[i]
	}
	return nil
}

func (r *Registry) Has(code string) bool { return r.Get(code) != nil }

func (r *Registry) Codes() []string {
	all := r.All()
	codes := make([]string, len(all))
	for i, rule := range all {
		codes[i] = rule.Metadata().Code
	}
	return codes
}

func (r *Registry) All() []Rule { return r.Select(nil) }

// Select returns, in code order, the rules whose metadata satisfies keep.
// A nil keep selects everything.
func (r *Registry) Select(keep func(RuleMetadata) bool) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if keep == nil {
		return slices.Clone(r.rules)
	}
	var out []Rule
	for _, rule := range r.rules {
		if keep(rule.Metadata()) {
			out = append(out, rule)
		}
	}
	return out
}

var defaultRegistry = NewRegistry()

func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds rule to the default registry.
func Register(rule Rule) { defaultRegistry.Register(rule) }

func Codes() []string { return defaultRegistry.Codes() }

// EnabledDefault returns the default rules that run without configuration.
func EnabledDefault() []Rule {
	return defaultRegistry.Select(func(m RuleMetadata) bool { return m.EnabledByDefault })
}
