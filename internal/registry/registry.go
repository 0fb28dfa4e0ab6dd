// Package registry compiles a rule set's patterns once and shares the
// result read-only across file evaluations
package registry

import (
	"fmt"
	"sync"

	"github.com/ludo-technologies/compass/domain"
	"golang.org/x/sync/singleflight"
)

// Entry is one enabled rule with its compiled pattern
type Entry struct {
	Rule    domain.Rule
	Pattern domain.CompiledPattern
}

// CompileFailure records a rule whose pattern did not compile
type CompileFailure struct {
	Rule string
	Err  error
}

// Warning renders the failure for a report
func (f CompileFailure) Warning() string {
	return fmt.Sprintf("rule '%s' skipped: %v", f.Rule, f.Err)
}

// Registry is the frozen set of compiled patterns for one rule set.
// It has no mutators and is safe for concurrent use.
type Registry struct {
	ruleSet  *domain.RuleSet
	entries  []Entry
	byName   map[string]int
	failures []CompileFailure
}

// Build compiles every enabled rule of rs. A rule that fails to compile is
// recorded and excluded; compilation continues with the remaining rules.
func Build(engine domain.PatternEngine, rs *domain.RuleSet) *Registry {
	reg := &Registry{
		ruleSet: rs,
		byName:  make(map[string]int),
	}

	for _, rule := range rs.EnabledRules() {
		compiled, err := engine.Compile(rs.Language(), rule.Pattern)
		if err == nil && (compiled == nil || compiled.CaptureCount() == 0) {
			err = fmt.Errorf("pattern has no captures")
		}
		if err != nil {
			reg.failures = append(reg.failures, CompileFailure{
				Rule: rule.Name,
				Err:  domain.NewPatternCompileError(rule.Name, err),
			})
			continue
		}

		reg.byName[rule.Name] = len(reg.entries)
		reg.entries = append(reg.entries, Entry{Rule: rule, Pattern: compiled})
	}

	return reg
}

// RuleSet returns the rule set the registry was built from
func (r *Registry) RuleSet() *domain.RuleSet { return r.ruleSet }

// Language returns the language of the compiled patterns
func (r *Registry) Language() domain.Language { return r.ruleSet.Language() }

// Len returns the number of compiled patterns
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns the compiled rules in rule-set order
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the compiled entry for a rule name
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Failures returns the rules that failed to compile
func (r *Registry) Failures() []CompileFailure {
	out := make([]CompileFailure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Warnings returns one message per compile failure
func (r *Registry) Warnings() []string {
	out := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		out = append(out, f.Warning())
	}
	return out
}

type cacheKey struct {
	language domain.Language
	source   string
	digest   string
}

// Cache shares registries across evaluations keyed by (language, source, digest).
// Each registry is built at most once, even under concurrent callers.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Registry
	group   singleflight.Group
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Registry)}
}

var defaultCache = NewCache()

// DefaultCache returns the process-wide registry cache
func DefaultCache() *Cache {
	return defaultCache
}

// Get returns the registry for rs, building it with engine on first use
func (c *Cache) Get(engine domain.PatternEngine, rs *domain.RuleSet) *Registry {
	key := cacheKey{language: rs.Language(), source: rs.Source(), digest: rs.Digest()}

	c.mu.RLock()
	reg, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return reg
	}

	v, _, _ := c.group.Do(string(key.language)+"\x00"+key.source+"\x00"+key.digest, func() (interface{}, error) {
		c.mu.RLock()
		existing, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		built := Build(engine, rs)
		c.mu.Lock()
		c.entries[key] = built
		c.mu.Unlock()
		return built, nil
	})
	return v.(*Registry)
}

// Len returns the number of cached registries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
