package application

import (
	"regexp"
	"strings"

	"github.com/dmehra2102/storefront/internal/checkout/domain"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	cardPattern  = regexp.MustCompile(`^[0-9]{16}$`)
)

// Validate checks the whole form at once and returns every failing field.
// Format checks only run on values that are not blank, so a blank email is
// REQUIRED rather than INVALID_EMAIL.
func Validate(form map[domain.Field]string) domain.FieldErrors {
	errs := domain.FieldErrors{}
	for _, f := range domain.Fields {
		if strings.TrimSpace(form[f]) == "" {
			errs[f] = domain.CodeRequired
		}
	}

	if email := form[domain.Email]; strings.TrimSpace(email) != "" && !emailPattern.MatchString(email) {
		errs[domain.Email] = domain.CodeInvalidEmail
	}

	if card := form[domain.CardNumber]; strings.TrimSpace(card) != "" {
		digits := strings.Join(strings.Fields(card), "")
		if !cardPattern.MatchString(digits) {
			errs[domain.CardNumber] = domain.CodeInvalidCardNumber
		}
	}
	return errs
}
