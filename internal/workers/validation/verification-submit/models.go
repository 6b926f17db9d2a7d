package verificationsubmit

const (
	RequestTitle = "Demande de validation"
	// RequestColor is the orange of pending requests.
	RequestColor = 0xE67E22

	AcceptLabel = "Accepter"
	DenyLabel   = "Refuser"

	Acknowledgement = "Votre demande a été envoyée pour validation."
)

// Input is a parsed form submission.
type Input struct {
	GuildID             string
	MemberID            string
	ValidationChannelID string
	FirstName           string
	LastName            string
	SelectionText       string
}

// Output describes the posted decision request.
type Output struct {
	MessageID           string
	ValidationChannelID string
}
