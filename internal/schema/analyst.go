package schema

import "fmt"

// Analyst is one interview persona. Analysts exist only for the lifetime of a
// single interview run and are never persisted.
type Analyst struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Persona renders the analyst as prompt context for question generation.
func (a Analyst) Persona() string {
	return fmt.Sprintf("Name: %s\nRole: %s\nDescription: %s\n", a.Name, a.Role, a.Description)
}

// Perspectives is the structured-output envelope for analyst generation.
type Perspectives struct {
	Analysts []Analyst `json:"analysts"`
}
