// Package tool holds the process-wide tool registry: static descriptors
// advertised to the model and the handlers dispatched when the model calls
// one. Handlers run for untrusted callers (the model picks the name and the
// arguments), so every fault is converted to a failed result instead of
// propagating.
package tool

import "fmt"

// Descriptor is the static metadata for one tool. Its JSON form is the exact
// advertisement shape the upstream completion API expects:
// {name, description, input_schema: {type, properties, required}}.
type Descriptor struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"input_schema"`
}

type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Enum        []string            `json:"enum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
}

// Result is the outcome of one invocation. Value holds the handler's result
// when OK, or the failure message when not.
type Result struct {
	OK    bool `json:"ok"`
	Value any  `json:"value"`
}

func failure(format string, args ...any) Result {
	return Result{OK: false, Value: fmt.Sprintf(format, args...)}
}

// DuplicateToolError reports a second registration under an existing name.
// The first registration stays active.
type DuplicateToolError struct {
	Name string
}

func (e DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}
