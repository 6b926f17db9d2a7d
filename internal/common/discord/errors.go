package discord

import (
	stderrors "errors"
	"net/http"

	"role-validation-bot/internal/common/errors"

	"github.com/bwmarrin/discordgo"
)

// statusOf returns the HTTP status of a REST failure, 0 otherwise.
func statusOf(err error) int {
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode
	}
	return 0
}

// IsForbidden reports whether the platform refused the action.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsNotFound reports whether the referenced object no longer exists.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound || stderrors.Is(err, discordgo.ErrStateNotFound)
}

// ClassifyError maps a platform failure onto a StandardError.
func ClassifyError(err error) *errors.StandardError {
	if err == nil {
		return nil
	}
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case IsForbidden(err):
		return errors.NewPermissionDeniedError("Je n'ai pas la permission d'effectuer cette action.", err)
	case IsNotFound(err):
		return errors.NewNotFoundError("L'élément demandé n'existe plus sur ce serveur.", err.Error())
	default:
		return errors.NewDeliveryFailedError(err)
	}
}
