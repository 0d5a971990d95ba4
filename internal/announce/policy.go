package announce

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dop251/goja"
)

// ErrNoPredicate is returned by LoadPolicy when the script doesn't
// define a shouldAnnounce function.
var ErrNoPredicate = errors.New("announce: script does not define shouldAnnounce(role, text, live, atomic)")

// Policy is a per-application announcement filter backed by a small
// user-supplied JavaScript predicate (SPEC_FULL.md §4.10). A nil
// *Policy always announces.
type Policy struct {
	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

// LoadPolicy compiles script and resolves its shouldAnnounce export.
func LoadPolicy(script string) (*Policy, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("announce: compiling policy script: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("shouldAnnounce"))
	if !ok {
		return nil, ErrNoPredicate
	}
	return &Policy{vm: vm, fn: fn}, nil
}

// ShouldAnnounce evaluates the predicate for one candidate
// announcement. A nil Policy, or a script that errors at call time,
// falls back to true: a misbehaving filter must never fatally silence
// the screen reader.
func (p *Policy) ShouldAnnounce(role, text, live string, atomic bool) bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.fn(goja.Undefined(), p.vm.ToValue(role), p.vm.ToValue(text), p.vm.ToValue(live), p.vm.ToValue(atomic))
	if err != nil {
		slog.Warn("announcement policy script errored, falling back to announce", "error", err)
		return true
	}
	return result.ToBoolean()
}
