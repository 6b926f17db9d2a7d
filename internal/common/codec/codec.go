// Package codec renders workflow state into the text of the messages the bot
// sends and parses it back when a later interaction arrives.
//
// Nothing is stored between steps: the selection prompt, the form identifier
// and the decision request together carry everything the next step needs.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/models"
)

// Labels of the lines written into embed descriptions.
const (
	LabelRoles             = "Rôles uniques: "
	LabelValidationRole    = "Rôle de validation: "
	LabelValidationChannel = "Channel de validation: "
	LabelFirstName         = "Prénom: "
	LabelLastName          = "Nom: "
	LabelMember            = "Utilisateur: "
)

var (
	roleMentionPattern = regexp.MustCompile(`<@&(\d+)>`)
	userMentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)
	snowflakePattern   = regexp.MustCompile(`^\d+$`)
)

// RoleMention renders a role reference.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// UserMention renders a member reference.
func UserMention(userID string) string {
	return "<@" + userID + ">"
}

// ChannelMention renders a channel reference.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// IsSnowflake reports whether s looks like a platform id.
func IsSnowflake(s string) bool {
	return snowflakePattern.MatchString(s)
}

// ParseRoleMentions returns the role ids mentioned in text, in order of first
// appearance, without duplicates.
func ParseRoleMentions(text string) []string {
	matches := roleMentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}

func joinRoleMentions(roleIDs []string) string {
	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = RoleMention(id)
	}
	return strings.Join(mentions, ", ")
}

// EncodeSelection renders the three-line description of a selection prompt.
func EncodeSelection(s models.SelectionState) string {
	return LabelRoles + joinRoleMentions(s.RoleIDs) + "\n" +
		LabelValidationRole + RoleMention(s.ValidationRoleID) + "\n" +
		LabelValidationChannel + s.ValidationChannelID
}

// DecodeSelection parses a selection prompt description.
func DecodeSelection(text string) (*models.SelectionState, error) {
	roleIDs, validationRoleID, err := decodeRoles(text)
	if err != nil {
		return nil, err
	}

	channelID, err := field(text, LabelValidationChannel)
	if err != nil {
		return nil, err
	}
	if !IsSnowflake(channelID) {
		return nil, errors.NewMalformedStateError(fmt.Sprintf("invalid validation channel id %q", channelID))
	}

	return &models.SelectionState{
		RoleIDs:             roleIDs,
		ValidationRoleID:    validationRoleID,
		ValidationChannelID: channelID,
	}, nil
}

// EncodeDecision renders the five-line description of a decision request.
func EncodeDecision(d models.DecisionRequest) string {
	return LabelFirstName + d.FirstName + "\n" +
		LabelLastName + d.LastName + "\n" +
		LabelMember + UserMention(d.MemberID) + "\n" +
		LabelRoles + joinRoleMentions(d.RoleIDs) + "\n" +
		LabelValidationRole + RoleMention(d.ValidationRoleID)
}

// DecodeDecision parses a decision request description. Audit lines appended
// after a decision do not interfere.
func DecodeDecision(text string) (*models.DecisionRequest, error) {
	firstName, err := field(text, LabelFirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := field(text, LabelLastName)
	if err != nil {
		return nil, err
	}
	if firstName == "" || lastName == "" {
		return nil, errors.NewMalformedStateError("empty name field")
	}

	memberText, err := field(text, LabelMember)
	if err != nil {
		return nil, err
	}
	m := userMentionPattern.FindStringSubmatch(memberText)
	if m == nil {
		return nil, errors.NewMalformedStateError(fmt.Sprintf("invalid member reference %q", memberText))
	}

	roleIDs, validationRoleID, err := decodeRoles(text)
	if err != nil {
		return nil, err
	}

	return &models.DecisionRequest{
		FirstName:        firstName,
		LastName:         lastName,
		MemberID:         m[1],
		RoleIDs:          roleIDs,
		ValidationRoleID: validationRoleID,
	}, nil
}

// AppendDecisionAudit adds the "decided by" line to a decision request description.
func AppendDecisionAudit(text string, action models.DecisionAction, actorID string) string {
	verb := "refusée"
	if action == models.DecisionAccept {
		verb = "acceptée"
	}
	return text + "\n\nDemande " + verb + " par " + UserMention(actorID)
}

func decodeRoles(text string) ([]string, string, error) {
	rolesText, err := field(text, LabelRoles)
	if err != nil {
		return nil, "", err
	}
	roleIDs := ParseRoleMentions(rolesText)
	if len(roleIDs) == 0 {
		return nil, "", errors.NewMalformedStateError("no assignable role referenced")
	}

	validationText, err := field(text, LabelValidationRole)
	if err != nil {
		return nil, "", err
	}
	validation := ParseRoleMentions(validationText)
	if len(validation) != 1 {
		return nil, "", errors.NewMalformedStateError(fmt.Sprintf("expected one validation role, got %d", len(validation)))
	}

	return roleIDs, validation[0], nil
}

// field returns the rest of the first line starting with label.
func field(text, label string) (string, error) {
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, label); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return "", errors.NewMalformedStateError(fmt.Sprintf("label %q not found", strings.TrimSpace(label)))
}
