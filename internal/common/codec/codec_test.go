package codec

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSelection_Example(t *testing.T) {
	text := "Rôles uniques: <@&1>, <@&2>\nRôle de validation: <@&3>\nChannel de validation: 555"

	got, err := DecodeSelection(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, got.RoleIDs)
	assert.Equal(t, "3", got.ValidationRoleID)
	assert.Equal(t, "555", got.ValidationChannelID)
}

func TestEncodeSelection_Layout(t *testing.T) {
	got := EncodeSelection(models.SelectionState{
		RoleIDs:             []string{"1", "2"},
		ValidationRoleID:    "3",
		ValidationChannelID: "555",
	})
	assert.Equal(t, "Rôles uniques: <@&1>, <@&2>\nRôle de validation: <@&3>\nChannel de validation: 555", got)
}

func randomSnowflake(r *rand.Rand) string {
	return strconv.FormatUint(uint64(r.Int63n(1<<62))+1, 10)
}

func TestSelection_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := r.Intn(25) + 1
		seen := map[string]bool{}
		roles := make([]string, 0, n)
		for len(roles) < n {
			id := randomSnowflake(r)
			if !seen[id] {
				seen[id] = true
				roles = append(roles, id)
			}
		}
		want := models.SelectionState{
			RoleIDs:             roles,
			ValidationRoleID:    randomSnowflake(r),
			ValidationChannelID: randomSnowflake(r),
		}

		got, err := DecodeSelection(EncodeSelection(want))
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, want, *got)
	}
}

func TestDecodeSelection_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "missing roles label", text: "Rôle de validation: <@&3>\nChannel de validation: 555"},
		{name: "no roles", text: "Rôles uniques: \nRôle de validation: <@&3>\nChannel de validation: 555"},
		{name: "missing validation role", text: "Rôles uniques: <@&1>\nChannel de validation: 555"},
		{name: "two validation roles", text: "Rôles uniques: <@&1>\nRôle de validation: <@&3> <@&4>\nChannel de validation: 555"},
		{name: "missing channel", text: "Rôles uniques: <@&1>\nRôle de validation: <@&3>"},
		{name: "non numeric channel", text: "Rôles uniques: <@&1>\nRôle de validation: <@&3>\nChannel de validation: general"},
		{name: "edited text", text: "Choisissez un rôle ci-dessous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSelection(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeMalformedState))
		})
	}
}

func TestDecision_RoundTrip(t *testing.T) {
	want := models.DecisionRequest{
		FirstName:        "Marie",
		LastName:         "Curie",
		MemberID:         "42",
		RoleIDs:          []string{"10", "11"},
		ValidationRoleID: "12",
	}

	text := EncodeDecision(want)
	assert.Equal(t,
		"Prénom: Marie\nNom: Curie\nUtilisateur: <@42>\nRôles uniques: <@&10>, <@&11>\nRôle de validation: <@&12>",
		text)

	got, err := DecodeDecision(text)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, "Marie Curie", got.Nickname())
}

func TestDecodeDecision_AfterAudit(t *testing.T) {
	text := EncodeDecision(models.DecisionRequest{
		FirstName: "Ada", LastName: "Lovelace", MemberID: "7",
		RoleIDs: []string{"1"}, ValidationRoleID: "2",
	})
	text = AppendDecisionAudit(text, models.DecisionAccept, "99")
	assert.Contains(t, text, "\n\nDemande acceptée par <@99>")

	got, err := DecodeDecision(text)
	require.NoError(t, err)
	assert.Equal(t, "2", got.ValidationRoleID)
	assert.Equal(t, "Lovelace", got.LastName)
}

func TestDecodeDecision_Malformed(t *testing.T) {
	valid := EncodeDecision(models.DecisionRequest{
		FirstName: "A", LastName: "B", MemberID: "1", RoleIDs: []string{"2"}, ValidationRoleID: "3",
	})

	tests := map[string]string{
		"missing first name": "Nom: B\nUtilisateur: <@1>\nRôles uniques: <@&2>\nRôle de validation: <@&3>",
		"bad member":         "Prénom: A\nNom: B\nUtilisateur: someone\nRôles uniques: <@&2>\nRôle de validation: <@&3>",
		"blank last name":    "Prénom: A\nNom: \nUtilisateur: <@1>\nRôles uniques: <@&2>\nRôle de validation: <@&3>",
		"no roles":           "Prénom: A\nNom: B\nUtilisateur: <@1>\nRôle de validation: <@&3>",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDecision(text)
			assert.True(t, errors.Is(err, errors.ErrCodeMalformedState))
		})
	}

	_, err := DecodeDecision(valid)
	assert.NoError(t, err)
}

func TestAppendDecisionAudit_Deny(t *testing.T) {
	assert.Equal(t, "x\n\nDemande refusée par <@5>", AppendDecisionAudit("x", models.DecisionDeny, "5"))
}

func TestParseRoleMentions(t *testing.T) {
	assert.Equal(t, []string{"3", "1", "2"}, ParseRoleMentions("<@&3> hello <@&1>, <@&3> <@&2> <@4> <#5>"))
	assert.Empty(t, ParseRoleMentions("@everyone <@123>"))
}

func TestFormID(t *testing.T) {
	id := FormID("555")
	assert.Equal(t, "verification_555", id)
	assert.True(t, IsFormID(id))

	got, err := ParseFormID(id)
	require.NoError(t, err)
	assert.Equal(t, "555", got)

	for _, bad := range []string{"verification_", "verification_abc", "other_555", "verification"} {
		_, err := ParseFormID(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecisionID(t *testing.T) {
	for _, action := range []models.DecisionAction{models.DecisionAccept, models.DecisionDeny} {
		id := DecisionID(action, "42", "555")
		assert.Equal(t, fmt.Sprintf("%s_42_555", action), id)
		assert.True(t, IsDecisionID(id))

		got, err := ParseDecisionID(id)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionTarget{Action: action, MemberID: "42", ValidationChannelID: "555"}, *got)
	}

	for _, bad := range []string{"accept_42", "accept_42_555_1", "maybe_42_555", "deny_x_555", "accept_42_"} {
		_, err := ParseDecisionID(bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, IsDecisionID("select_unique_role"))
}

func TestRoleOptionValue(t *testing.T) {
	v := RoleOptionValue("77")
	assert.Equal(t, "role_77", v)

	id, ok := ParseRoleOptionValue(v)
	assert.True(t, ok)
	assert.Equal(t, "77", id)

	_, ok = ParseRoleOptionValue("77")
	assert.False(t, ok)
}
