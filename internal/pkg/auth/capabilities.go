package auth

import (
	"path"
	"strings"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// Capabilities resolves what an actor may do from a role table.
// Role entries are glob patterns such as "*-sales-order".
type Capabilities struct {
	roles map[string][]string
}

// NewCapabilities builds a capability table from role definitions.
func NewCapabilities(roles map[string][]string) *Capabilities {
	table := make(map[string][]string, len(roles))
	for role, patterns := range roles {
		table[strings.ToLower(role)] = append([]string(nil), patterns...)
	}
	return &Capabilities{roles: table}
}

// Can reports whether the actor holds the capability.
func (c *Capabilities) Can(actor model.Actor, capability string) bool {
	if actor.System {
		return true
	}
	for _, role := range actor.Roles {
		for _, pattern := range c.roles[strings.ToLower(role)] {
			if ok, err := path.Match(pattern, capability); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Capability builds a capability name from a verb and a resource kind, e.g. approve-sales-order.
func Capability(verb string, kind model.ResourceKind) string {
	return verb + "-" + strings.ReplaceAll(string(kind), "_", "-")
}
