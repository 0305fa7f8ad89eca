package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// Input is one tool's typed arguments. The concrete type identifies the tool.
type Input interface {
	Tool() string
	Validate() error
}

// ErrUnknownTool is returned by Decode for names outside the catalog.
var ErrUnknownTool = errors.New("unknown tool")

type toolDef struct {
	desc string
	new  func() Input
}

var (
	registry = map[string]toolDef{}
	order    []string
)

func register(desc string, fn func() Input) {
	name := fn().Tool()
	if _, dup := registry[name]; dup {
		panic("dispatch: duplicate tool " + name)
	}
	registry[name] = toolDef{desc: desc, new: fn}
	order = append(order, name)
}

// Decode parses raw JSON into the named tool's input and validates it.
// Unknown fields are rejected.
func Decode(name string, raw json.RawMessage) (Input, error) {
	def, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTool, name)
	}
	in := def.new()
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("%s: invalid input: %v (fields: %s)", name, err, strings.Join(fieldNames(in), ", "))
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return in, nil
}

// ToolNames lists the catalog in registration order.
func ToolNames() []string {
	return append([]string(nil), order...)
}

// Field describes one input field for prompts and help output.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

var enumValues = map[string][]string{
	"projectStatus":       model.Values(model.ProjectStatuses),
	"milestoneStatus":     model.Values(model.MilestoneStatuses),
	"taskStatus":          model.Values(model.TaskStatuses),
	"taskPriority":        model.Values(model.TaskPriorities),
	"requirementType":     model.Values(model.RequirementTypes),
	"requirementStatus":   model.Values(model.RequirementStatuses),
	"requirementPriority": model.Values(model.RequirementPriorities),
	"targetType":          model.Values(model.TargetTypes),
	"linkType":            model.Values(model.LinkTypes),
	"noteCategory":        model.Values(model.NoteCategories),
}

// Catalog describes every tool, derived from the input struct tags.
func Catalog() []Tool {
	tools := make([]Tool, 0, len(order))
	for _, name := range order {
		def := registry[name]
		tools = append(tools, Tool{Name: name, Description: def.desc, Fields: fields(def.new())})
	}
	return tools
}

// Lookup returns the catalog entry for one tool.
func Lookup(name string) (Tool, bool) {
	def, ok := registry[name]
	if !ok {
		return Tool{}, false
	}
	return Tool{Name: name, Description: def.desc, Fields: fields(def.new())}, true
}

func fields(in Input) []Field {
	t := reflect.TypeOf(in).Elem()
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		f := Field{
			Name:        name,
			Type:        jsonType(sf.Type),
			Required:    sf.Tag.Get("required") == "true",
			Description: sf.Tag.Get("desc"),
		}
		if e := sf.Tag.Get("enum"); e != "" {
			f.Enum = enumValues[e]
		}
		out = append(out, f)
	}
	return out
}

func fieldNames(in Input) []string {
	var names []string
	for _, f := range fields(in) {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func jsonType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.Slice:
		return "array"
	default:
		return "string"
	}
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func parseOptional[T any](raw string, parse func(string) (T, error)) (T, error) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, nil
	}
	return parse(raw)
}

// parsePatch parses an optional patch value; nil stays nil.
func parsePatch[T any](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseDate(field string) func(string) (time.Time, error) {
	return func(s string) (time.Time, error) {
		t, err := model.ParseDate(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", field, err)
		}
		return t, nil
	}
}

func optionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field)(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
