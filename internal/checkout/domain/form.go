package domain

import (
	"sort"
	"strings"
)

type Field string

const (
	FirstName  Field = "firstName"
	LastName   Field = "lastName"
	Email      Field = "email"
	Address    Field = "address"
	City       Field = "city"
	ZipCode    Field = "zipCode"
	CardName   Field = "cardName"
	CardNumber Field = "cardNumber"
	ExpiryDate Field = "expiryDate"
	CVV        Field = "cvv"
)

// Fields lists the form in display order.
var Fields = []Field{
	FirstName, LastName, Email, Address, City, ZipCode,
	CardName, CardNumber, ExpiryDate, CVV,
}

func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

type ErrorCode string

const (
	CodeRequired          ErrorCode = "REQUIRED"
	CodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	CodeInvalidCardNumber ErrorCode = "INVALID_CARD_NUMBER"
)

func (c ErrorCode) Message() string {
	switch c {
	case CodeRequired:
		return "This field is required"
	case CodeInvalidEmail:
		return "Email is invalid"
	case CodeInvalidCardNumber:
		return "Card number must be 16 digits"
	default:
		return string(c)
	}
}

// FieldErrors maps a failing field to its code. Valid fields are absent.
type FieldErrors map[Field]ErrorCode

// ValidationError carries every failing field of one validation pass.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f, code := range e.Fields {
		names = append(names, string(f)+"="+string(code))
	}
	sort.Strings(names)
	return "checkout validation failed: " + strings.Join(names, ", ")
}
