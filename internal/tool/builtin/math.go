package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ternlabs/tern/internal/tool"
)

// All arithmetic operates on floating-point. Domain errors (division by
// zero, negative radicand) come back as ordinary failed results, never as
// panics.

func binaryMathDescriptor(name, description string) tool.Descriptor {
	return tool.Descriptor{
		Name:        name,
		Description: description,
		Parameters: tool.Parameters{
			Type: "object",
			Properties: map[string]tool.Property{
				"a": {Type: "number", Description: "First operand"},
				"b": {Type: "number", Description: "Second operand"},
			},
			Required: []string{"a", "b"},
		},
	}
}

var squareRootDescriptor = tool.Descriptor{
	Name:        "square_root",
	Description: "Compute the square root of a number",
	Parameters: tool.Parameters{
		Type: "object",
		Properties: map[string]tool.Property{
			"a": {Type: "number", Description: "The radicand"},
		},
		Required: []string{"a"},
	},
}

// number coerces a declared numeric field. A missing field or a wrong type
// is a handler-level fault, reported as an error.
func number(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required parameter: %s", key)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("parameter %s must be a number", key)
	}
	return n, nil
}

func binaryMathHandler(op func(a, b float64) (float64, error)) tool.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		a, err := number(args, "a")
		if err != nil {
			return nil, err
		}
		b, err := number(args, "b")
		if err != nil {
			return nil, err
		}
		result, err := op(a, b)
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": result}, nil
	}
}

func add(a, b float64) (float64, error)      { return a + b, nil }
func subtract(a, b float64) (float64, error) { return a - b, nil }
func multiply(a, b float64) (float64, error) { return a * b, nil }

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errors.New("Cannot divide by zero")
	}
	return a / b, nil
}

func squareRoot(ctx context.Context, args map[string]any) (any, error) {
	a, err := number(args, "a")
	if err != nil {
		return nil, err
	}
	if a < 0 {
		return nil, errors.New("Cannot take the square root of a negative number")
	}
	return map[string]any{"result": math.Sqrt(a)}, nil
}
