// Package builtin registers the reference tools: floating-point arithmetic,
// canned weather data, and a simulated search.
package builtin

import "github.com/ternlabs/tern/internal/tool"

// RegisterAll adds every builtin tool to the dispatcher. It fails fast on
// the first registration error; duplicate names indicate a setup bug.
func RegisterAll(d *tool.Dispatcher) error {
	registrations := []struct {
		desc    tool.Descriptor
		handler tool.Handler
	}{
		{binaryMathDescriptor("add", "Add two numbers"), binaryMathHandler(add)},
		{binaryMathDescriptor("subtract", "Subtract the second number from the first"), binaryMathHandler(subtract)},
		{binaryMathDescriptor("multiply", "Multiply two numbers"), binaryMathHandler(multiply)},
		{binaryMathDescriptor("divide", "Divide the first number by the second"), binaryMathHandler(divide)},
		{squareRootDescriptor, squareRoot},
		{weatherDescriptor, getWeather},
		{searchDescriptor, search},
	}

	for _, r := range registrations {
		if err := d.Register(r.desc, r.handler); err != nil {
			return err
		}
	}
	return nil
}
