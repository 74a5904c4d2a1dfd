package greeting

import (
	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"

	"github.com/takanag/nenga/core"
)

func isMonth(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, m := range Months {
		if val == m {
			return true
		}
	}
	return false
}

func hasValidContactCount(fl validator.FieldLevel) bool {
	ci, ok := fl.Field().Interface().(ContactInfo)
	if !ok {
		return false
	}
	if ci.ContactCount == 0 { // unset; Normalize derives it
		return true
	}
	return MinContactCount <= ci.ContactCount && ci.ContactCount <= MaxContactCount
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation("month", isMonth)
	_ = validate.RegisterValidation("contactcount", hasValidContactCount)

	core.RegisterCustomTranslation(validate, translator, "month", "{0} must be a month name")
	core.RegisterCustomTranslation(validate, translator, "contactcount", "contact_count must be between 1 and 5")
}
