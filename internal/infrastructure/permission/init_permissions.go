package permission

import (
	"fmt"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
)

// Objects and actions checked by the HTTP layer.
const (
	ObjectRequest     = "request"
	ObjectApplication = "application"
	ObjectChat        = "chat"
	ObjectAppointment = "appointment"
	ObjectOrder       = "order"
	ObjectRating      = "rating"
	ObjectAdmin       = "admin"

	ActionRead  = "read"
	ActionWrite = "write"
)

var defaultPolicies = [][]string{
	{string(identity.KindConsumer), ObjectRequest, "*"},
	{string(identity.KindConsumer), ObjectApplication, ActionRead},
	{string(identity.KindConsumer), ObjectChat, "*"},
	{string(identity.KindConsumer), ObjectAppointment, "*"},
	{string(identity.KindConsumer), ObjectOrder, "*"},
	{string(identity.KindConsumer), ObjectRating, "*"},

	{string(identity.KindPartnerOwner), ObjectApplication, ActionWrite},

	{string(identity.KindAdmin), ObjectAdmin, "*"},
}

// A partner owner is also a consumer; an admin inherits both.
var defaultGroupings = [][]string{
	{string(identity.KindPartnerOwner), string(identity.KindConsumer)},
	{string(identity.KindAdmin), string(identity.KindPartnerOwner)},
}

// InitMarketplacePermissions installs the default policy. Existing rules are
// kept, so operators may add restrictions in casbin_rule.
func (e *Enforcer) InitMarketplacePermissions() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range defaultPolicies {
		if _, err := e.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
	}
	for _, g := range defaultGroupings {
		if _, err := e.enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return fmt.Errorf("failed to add role inheritance %s -> %s: %w", g[0], g[1], err)
		}
	}

	e.logger.Infow("marketplace permissions initialized", "policies", len(defaultPolicies))
	return nil
}
