package tool

import (
	"github.com/invopop/jsonschema"
)

// ParametersFor derives an argument schema from a Go struct by reflection.
// Field names follow json tags; fields without omitempty are required.
func ParametersFor(v any) Parameters {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := r.Reflect(v)

	required := append([]string(nil), schema.Required...)
	if required == nil {
		required = []string{}
	}
	return Parameters{
		Type:       "object",
		Properties: propertiesOf(schema),
		Required:   required,
	}
}

func propertiesOf(s *jsonschema.Schema) map[string]Property {
	props := make(map[string]Property)
	if s.Properties == nil {
		return props
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props[pair.Key] = propertyOf(pair.Value)
	}
	return props
}

func propertyOf(s *jsonschema.Schema) Property {
	p := Property{
		Type:        s.Type,
		Description: s.Description,
	}
	for _, e := range s.Enum {
		if str, ok := e.(string); ok {
			p.Enum = append(p.Enum, str)
		}
	}
	if s.Items != nil {
		item := propertyOf(s.Items)
		p.Items = &item
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		p.Properties = propertiesOf(s)
		p.Required = append([]string(nil), s.Required...)
	}
	if s.Default != nil {
		p.Default = s.Default
	}
	return p
}
