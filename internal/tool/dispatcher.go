package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes one tool invocation. Arguments arrive as the decoded JSON
// object the model produced; handlers coerce and validate their own fields
// and report domain errors as ordinary errors.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher maps tool names to handlers. Registration happens once at
// startup; Invoke is safe for concurrent use across requests afterwards.
type Dispatcher struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	logger  *slog.Logger
}

type entry struct {
	desc    Descriptor
	handler Handler
	schema  *jsonschema.Schema
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
}

// Register adds a name→handler mapping. It fails with DuplicateToolError
// when the name is taken and with an ordinary error when the descriptor's
// argument schema does not compile.
func (d *Dispatcher) Register(desc Descriptor, handler Handler) error {
	if desc.Name == "" {
		return fmt.Errorf("tool descriptor has no name")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", desc.Name)
	}

	schema, err := compileParameters(desc)
	if err != nil {
		return fmt.Errorf("tool %q: %w", desc.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.entries[desc.Name]; exists {
		return DuplicateToolError{Name: desc.Name}
	}
	d.entries[desc.Name] = &entry{desc: desc, handler: handler, schema: schema}
	d.order = append(d.order, desc.Name)
	return nil
}

// Descriptors returns the catalog in registration order. The slice is a
// copy; callers cannot mutate the registry through it.
func (d *Dispatcher) Descriptors() []Descriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Descriptor, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.entries[name].desc)
	}
	return out
}

// Invoke looks up name and runs its handler. It never returns an error and
// never panics: unknown names, schema violations, handler errors, and
// handler panics all come back as a failed Result. The model chooses the
// name, so a bad one must not crash the process.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) Result {
	d.mu.RLock()
	e, ok := d.entries[name]
	d.mu.RUnlock()
	if !ok {
		return failure("unknown tool: %s", name)
	}

	normalized, doc, err := normalizeArgs(args)
	if err != nil {
		return failure("invalid arguments for %s: %v", name, err)
	}
	if err := e.schema.Validate(doc); err != nil {
		return failure("invalid arguments for %s: %v", name, err)
	}

	value, err := d.call(ctx, e, normalized)
	if err != nil {
		return Result{OK: false, Value: err.Error()}
	}
	return Result{OK: true, Value: value}
}

func (d *Dispatcher) call(ctx context.Context, e *entry, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked", "tool", e.desc.Name, "panic", r)
			err = fmt.Errorf("tool %s failed", e.desc.Name)
		}
	}()
	return e.handler(ctx, args)
}

// compileParameters turns a descriptor's declared schema into a validator.
func compileParameters(desc Descriptor) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(desc.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal argument schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode argument schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	url := "tool:///" + desc.Name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add argument schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile argument schema: %w", err)
	}
	return schema, nil
}

// normalizeArgs canonicalizes the argument object at the dispatch boundary.
// Arguments decoded from the wire already use JSON's representation (numbers
// as float64); arguments built in Go code may not, so everything round-trips
// through encoding/json once. The second return value is the same document in
// the form the schema validator expects.
func normalizeArgs(args map[string]any) (map[string]any, any, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, nil, err
	}
	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	return normalized, doc, nil
}
