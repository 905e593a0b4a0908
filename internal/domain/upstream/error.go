package upstream

import "fmt"

type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindRemote    Kind = "remote"
)

// Error описывает один упавший вызов апстрима. Хранится в снапшоте на месте
// отсутствующего значения.
type Error struct {
	Provider string `json:"provider,omitempty"`
	Service  string `json:"service"`
	Scope    string `json:"scope,omitempty"`
	Field    string `json:"field,omitempty"`
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
}

func (e *Error) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s %s (%s): %s", e.Kind, e.Service, e.Scope, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Service, e.Message)
}

// At возвращает копию e с указанием места ошибки.
func (e *Error) At(provider, scope, field string) *Error {
	if e == nil {
		return nil
	}
	c := *e
	c.Provider = provider
	c.Scope = scope
	c.Field = field
	return &c
}
