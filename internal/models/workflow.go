package models

import "time"

// SelectionState is the state carried by a role-selection prompt.
type SelectionState struct {
	RoleIDs             []string
	ValidationRoleID    string
	ValidationChannelID string
}

// DecisionRequest is the state carried by a decision request posted in the
// validation channel.
type DecisionRequest struct {
	FirstName        string
	LastName         string
	MemberID         string
	RoleIDs          []string
	ValidationRoleID string
}

// Nickname is the display name applied on acceptance.
func (d DecisionRequest) Nickname() string {
	return d.FirstName + " " + d.LastName
}

// DecisionAction is the staff decision encoded in a button custom id.
type DecisionAction string

const (
	DecisionAccept DecisionAction = "accept"
	DecisionDeny   DecisionAction = "deny"
)

// DecisionTarget is what a decision button identifies: who and where.
type DecisionTarget struct {
	Action              DecisionAction
	MemberID            string
	ValidationChannelID string
}

// DecisionRecord is one applied decision, as written to the audit trail.
type DecisionRecord struct {
	GuildID          string
	MessageID        string
	MemberID         string
	ActorID          string
	Action           DecisionAction
	Nickname         string
	RoleIDs          []string
	ValidationRoleID string
	DecidedAt        time.Time
}
