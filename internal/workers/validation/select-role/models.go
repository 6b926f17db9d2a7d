package selectrole

const (
	ModalTitle = "Vérification"

	FirstNameInputID = "first_name"
	LastNameInputID  = "last_name"
	FirstNameLabel   = "Prénom"
	LastNameLabel    = "Nom"

	// MaxNameLength keeps "<first> <last>" within the nickname limit.
	MaxNameLength = 32
)

// Output describes the opened form.
type Output struct {
	FormID              string
	ValidationChannelID string
	SelectedRoleID      string
}
