package verificationsubmit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/validation"
)

// MaxNicknameLength is the platform limit on display names.
const MaxNicknameLength = 32

func GetFormSchema() map[string]interface{} {
	name := map[string]interface{}{
		"type":      "string",
		"minLength": 1,
		"maxLength": MaxNicknameLength,
		"pattern":   `\S`,
	}
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"firstName", "lastName"},
		"properties": map[string]interface{}{
			"firstName": name,
			"lastName":  name,
		},
	}
}

func validateInput(input *Input) error {
	result, err := validation.ValidateDocument(GetFormSchema(), map[string]interface{}{
		"firstName": input.FirstName,
		"lastName":  input.LastName,
	})
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !result.Valid {
		return errors.NewMalformedInputError("Le prénom et le nom sont obligatoires.",
			strings.Join(result.GetErrorMessages(), "; "))
	}

	if n := utf8.RuneCountInString(input.FirstName + " " + input.LastName); n > MaxNicknameLength {
		return errors.NewMalformedInputError(
			fmt.Sprintf("Le prénom et le nom ne doivent pas dépasser %d caractères au total.", MaxNicknameLength-1),
			fmt.Sprintf("nickname length: %d", n))
	}
	return nil
}
