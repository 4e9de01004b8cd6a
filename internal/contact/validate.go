package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldInterest Field = "interest"
	FieldMessage  Field = "message"
)

const DefaultInterest = "branding"

// Interests are the options offered by the site's select box.
var Interests = []string{"branding", "strategy", "web", "uiux"}

const minMessageLen = 10

const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Enter valid email"
	MsgMessageRequired = "Message is empty"
	MsgMessageTooShort = "Min 10 chars"
)

// emailPattern treats Unicode separators and the BOM as whitespace too, so
// "\u00a0" or "\u2028" inside an address is rejected like a plain space.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// FormState is the raw contact form as typed by the visitor.
type FormState struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Interest string `json:"interest"`
	Message  string `json:"message"`
}

func DefaultFormState() FormState {
	return FormState{Interest: DefaultInterest}
}

// FieldErrors holds one message per failing field. A missing key means valid.
type FieldErrors map[Field]string

func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Validate checks name, email and message. Interest is never validated.
func Validate(f FormState) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}
	if strings.TrimSpace(f.Email) == "" {
		errs[FieldEmail] = MsgEmailRequired
	} else if !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = MsgEmailInvalid
	}
	msg := strings.TrimSpace(f.Message)
	if msg == "" {
		errs[FieldMessage] = MsgMessageRequired
	} else if utf8.RuneCountInString(msg) < minMessageLen {
		errs[FieldMessage] = MsgMessageTooShort
	}
	return errs
}

func (f FormState) with(field Field, value string) (FormState, bool) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldInterest:
		f.Interest = value
	case FieldMessage:
		f.Message = value
	default:
		return f, false
	}
	return f, true
}
