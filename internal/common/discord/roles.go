package discord

import (
	"fmt"

	"role-validation-bot/internal/common/errors"

	"github.com/bwmarrin/discordgo"
)

// RolesByID indexes guild roles.
func RolesByID(roles []*discordgo.Role) map[string]*discordgo.Role {
	out := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		out[r.ID] = r
	}
	return out
}

// ResolveRoles looks every id up among the guild's live roles, failing on the
// first one that no longer exists.
func ResolveRoles(p Platform, guildID string, ids []string) ([]*discordgo.Role, error) {
	guildRoles, err := p.GuildRoles(guildID)
	if err != nil {
		return nil, ClassifyError(err)
	}
	byID := RolesByID(guildRoles)

	out := make([]*discordgo.Role, 0, len(ids))
	for _, id := range ids {
		role, ok := byID[id]
		if !ok {
			return nil, errors.NewNotFoundError(
				fmt.Sprintf("Le rôle <@&%s> n'existe plus sur ce serveur.", id),
				fmt.Sprintf("roleId: %s", id),
			)
		}
		out = append(out, role)
	}
	return out, nil
}

// TopRole returns the member's highest role, nil when the member only has
// the implicit everyone role.
func TopRole(member *discordgo.Member, byID map[string]*discordgo.Role) *discordgo.Role {
	var top *discordgo.Role
	for _, id := range member.Roles {
		role, ok := byID[id]
		if !ok {
			continue
		}
		if top == nil || Outranks(role, top) {
			top = role
		}
	}
	return top
}

// Outranks reports whether a sits strictly above b in the role hierarchy.
// Equal positions are broken by id: the older (smaller) id ranks higher.
func Outranks(a, b *discordgo.Role) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	case a.Position != b.Position:
		return a.Position > b.Position
	default:
		return snowflakeLess(a.ID, b.ID)
	}
}

func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
