package validate

import "strings"

// FieldError one rejected field, Domain is the json or query name the client sent
type FieldError struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// NewFieldError create new field error
func NewFieldError(domain string, reason string) *FieldError {
	return &FieldError{domain, reason}
}

// FieldErrors all failures of one validation, nil when valid
type FieldErrors []*FieldError

// Domains names of the rejected fields in report order
func (fe FieldErrors) Domains() []string {
	names := make([]string, len(fe))
	for i, e := range fe {
		names[i] = e.Domain
	}
	return names
}

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Domain + ": " + e.Reason
	}
	return strings.Join(parts, "; ")
}

// Validator checks request bodies and single query values.
//
// Locale takes an Accept-Language header, unsupported or empty lists fall back to english.
type Validator interface {
	Struct(s interface{}) FieldErrors
	StructLocale(locale string, s interface{}) FieldErrors
	Var(locale, varName string, value interface{}, tag string) FieldErrors
	Empty(varName string, value interface{}) FieldErrors
}
