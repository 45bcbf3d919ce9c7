package usecase

import (
	"context"
	"fmt"
	"slices"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/auth"
)

// Step is a precondition or side effect of a rule. It runs inside the transition transaction.
type Step func(ctx context.Context, t *transition) error

// Rule describes how an order enters one status.
type Rule struct {
	To   model.Status
	From []model.Status
	// Verb combined with the order kind forms the required capability.
	Verb    string
	Require []Step
	// Before runs ahead of the status write, After once the new status is persisted.
	Before []Step
	After  []Step
	// Retarget stores a different final status. Both To and Retarget are written to history.
	Retarget model.Status
}

// Machine is the status state machine of one order kind.
type Machine struct {
	Kind     model.ResourceKind
	names    map[model.Status]string
	terminal []model.Status
	rules    map[model.Status]Rule
}

// NewMachine builds a machine from its status names, terminal states and rules.
func NewMachine(kind model.ResourceKind, names map[model.Status]string, terminal []model.Status, rules ...Rule) *Machine {
	m := &Machine{Kind: kind, names: names, terminal: terminal, rules: make(map[model.Status]Rule, len(rules))}
	for _, r := range rules {
		m.rules[r.To] = r
	}
	return m
}

// Name returns the display name of a status.
func (m *Machine) Name(s model.Status) string {
	if n, ok := m.names[s]; ok {
		return n
	}
	return fmt.Sprintf("status %d", s)
}

// Terminal reports whether no transition leaves s.
func (m *Machine) Terminal(s model.Status) bool {
	return slices.Contains(m.terminal, s)
}

// Statuses returns every status with a name, in workflow order.
func (m *Machine) Statuses() []model.Status {
	out := make([]model.Status, 0, len(m.names))
	for s := range m.names {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// StatusByName resolves a display name such as "Sent_to_supplier".
func (m *Machine) StatusByName(name string) (model.Status, bool) {
	for s, n := range m.names {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Rule returns the rule for entering target.
func (m *Machine) Rule(target model.Status) (Rule, bool) {
	r, ok := m.rules[target]
	return r, ok
}

// Capability returns the capability needed to enter the rule's status.
func (m *Machine) Capability(r Rule) string {
	return auth.Capability(r.Verb, m.Kind)
}

// CanTransition reports whether from -> to is a defined edge.
func (m *Machine) CanTransition(from, to model.Status) bool {
	r, ok := m.rules[to]
	if !ok || m.Terminal(from) {
		return false
	}
	return slices.Contains(r.From, from)
}

func (m *Machine) checkEdge(from, to model.Status) error {
	if !m.CanTransition(from, to) {
		return domainErrors.Precondition("%s cannot move from %s to %s", m.Kind, m.Name(from), m.Name(to))
	}
	return nil
}

// transition is the state of one status change while its transaction is open.
type transition struct {
	order  *model.Order
	actor  model.Actor
	from   model.Status
	target model.Status
	log    *commitLog
}

// commitLog collects work that must only happen once the transaction committed.
type commitLog struct {
	cacheKeys     []string
	notifications []model.Notification
}

func (l *commitLog) invalidate(keys ...string) {
	for _, k := range keys {
		if !slices.Contains(l.cacheKeys, k) {
			l.cacheKeys = append(l.cacheKeys, k)
		}
	}
}

func (l *commitLog) notify(n model.Notification) {
	l.notifications = append(l.notifications, n)
}
