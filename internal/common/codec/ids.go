package codec

import (
	"fmt"
	"strings"

	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/models"
)

const (
	// SelectCustomID identifies the dropdown on every selection prompt.
	SelectCustomID = "select_unique_role"
	// FormTag prefixes the identifier of the verification form.
	FormTag = "verification"

	roleOptionPrefix = "role_"
)

// FormID builds the form identifier routing a submission to a validation channel.
func FormID(validationChannelID string) string {
	return FormTag + "_" + validationChannelID
}

// IsFormID reports whether customID belongs to a verification form.
func IsFormID(customID string) bool {
	return strings.HasPrefix(customID, FormTag+"_")
}

// ParseFormID extracts the validation channel id from a form identifier.
func ParseFormID(customID string) (string, error) {
	channelID, ok := strings.CutPrefix(customID, FormTag+"_")
	if !ok || !IsSnowflake(channelID) {
		return "", errors.NewMalformedStateError(fmt.Sprintf("invalid form id %q", customID))
	}
	return channelID, nil
}

// DecisionID builds a decision button identifier.
func DecisionID(action models.DecisionAction, memberID, validationChannelID string) string {
	return fmt.Sprintf("%s_%s_%s", action, memberID, validationChannelID)
}

// IsDecisionID reports whether customID belongs to an accept or deny button.
func IsDecisionID(customID string) bool {
	return strings.HasPrefix(customID, string(models.DecisionAccept)+"_") ||
		strings.HasPrefix(customID, string(models.DecisionDeny)+"_")
}

// ParseDecisionID splits a decision button identifier.
func ParseDecisionID(customID string) (*models.DecisionTarget, error) {
	parts := strings.Split(customID, "_")
	if len(parts) != 3 {
		return nil, errors.NewMalformedStateError(fmt.Sprintf("invalid decision id %q", customID))
	}

	action := models.DecisionAction(parts[0])
	if action != models.DecisionAccept && action != models.DecisionDeny {
		return nil, errors.NewMalformedStateError(fmt.Sprintf("unknown decision %q", parts[0]))
	}
	if !IsSnowflake(parts[1]) || !IsSnowflake(parts[2]) {
		return nil, errors.NewMalformedStateError(fmt.Sprintf("invalid decision id %q", customID))
	}

	return &models.DecisionTarget{
		Action:              action,
		MemberID:            parts[1],
		ValidationChannelID: parts[2],
	}, nil
}

// RoleOptionValue is the select-option value for an assignable role.
func RoleOptionValue(roleID string) string {
	return roleOptionPrefix + roleID
}

// ParseRoleOptionValue reverses RoleOptionValue.
func ParseRoleOptionValue(value string) (string, bool) {
	id, ok := strings.CutPrefix(value, roleOptionPrefix)
	return id, ok && IsSnowflake(id)
}
