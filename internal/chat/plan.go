package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/dispatch"
	"github.com/jorge-barreto/reqtrack/internal/fileblocks"
)

// maxSteps bounds the plans accepted from the model.
const maxSteps = 50

// ErrMalformed reports a model reply that is not a usable plan.
var ErrMalformed = errors.New("model reply is not a plan")

// HelpMessage is shown when the model's reply cannot be used.
const HelpMessage = `I couldn't turn that into a plan. Try naming what to change, for example:
  - "add a task Write API docs due 2025-03-01 to the Design milestone"
  - "create requirement Users can reset their password"
  - "link task Write spec to milestone Design Complete"
  - "what is overdue?"
Run "reqtrack tools" to see every operation.`

// Plan is the model's answer to one request.
type Plan struct {
	Intent  string          `json:"intent,omitempty"`
	Message string          `json:"message,omitempty"`
	Calls   []dispatch.Call `json:"toolCalls"`
}

type wireCall struct {
	Tool      string          `json:"tool"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Arguments json.RawMessage `json:"arguments"`
}

type wirePlan struct {
	Intent    string           `json:"intent"`
	Message   string           `json:"message"`
	ToolCalls []wireCall       `json:"toolCalls"`
	Snake     []wireCall       `json:"tool_calls"`
	Items     []map[string]any `json:"items"`
}

// itemTools maps the "type" of a bulk item to its create tool.
var itemTools = map[string]string{
	"project":     "create_project",
	"milestone":   "create_milestone",
	"task":        "create_task",
	"requirement": "create_requirement",
	"req":         "create_requirement",
	"note":        "create_note",
}

// ParsePlan extracts a plan from the model's reply. Either the whole plan is
// usable or ErrMalformed is returned; nothing is applied from a partial reply.
func ParsePlan(reply string) (Plan, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return Plan{}, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	var w wirePlan
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := Plan{Intent: strings.TrimSpace(w.Intent), Message: strings.TrimSpace(w.Message)}
	for i, c := range append(w.ToolCalls, w.Snake...) {
		call, err := c.call()
		if err != nil {
			return Plan{}, fmt.Errorf("%w: tool call %d: %v", ErrMalformed, i+1, err)
		}
		p.Calls = append(p.Calls, call)
	}
	for i, item := range w.Items {
		call, err := itemCall(item)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: item %d: %v", ErrMalformed, i+1, err)
		}
		p.Calls = append(p.Calls, call)
	}

	if len(p.Calls) == 0 && p.Message == "" {
		return Plan{}, fmt.Errorf("%w: no tool calls or message", ErrMalformed)
	}
	if len(p.Calls) > maxSteps {
		return Plan{}, fmt.Errorf("%w: %d steps exceeds the limit of %d", ErrMalformed, len(p.Calls), maxSteps)
	}
	return p, nil
}

func (c wireCall) call() (dispatch.Call, error) {
	tool := strings.TrimSpace(c.Tool)
	if tool == "" {
		tool = strings.TrimSpace(c.Name)
	}
	if tool == "" {
		return dispatch.Call{}, errors.New("missing tool name")
	}
	input := c.Input
	if len(input) == 0 {
		input = c.Arguments
	}
	// Some models encode the input object as a JSON string.
	var s string
	if json.Unmarshal(input, &s) == nil {
		input = json.RawMessage(s)
	}
	if len(input) > 0 && !json.Valid(input) {
		return dispatch.Call{}, fmt.Errorf("%s: input is not valid JSON", tool)
	}
	return dispatch.Call{Tool: tool, Input: input}, nil
}

func itemCall(item map[string]any) (dispatch.Call, error) {
	typ, _ := item["type"].(string)
	tool, ok := itemTools[strings.ToLower(strings.TrimSpace(typ))]
	if !ok {
		return dispatch.Call{}, fmt.Errorf("unknown item type %q", typ)
	}
	fields := make(map[string]any, len(item))
	for k, v := range item {
		if k != "type" {
			fields[k] = v
		}
	}
	// Projects and milestones are named; the other kinds are titled.
	if tool == "create_project" || tool == "create_milestone" {
		if _, has := fields["name"]; !has {
			if title, ok := fields["title"]; ok {
				fields["name"] = title
				delete(fields, "title")
			}
		}
	}
	input, err := json.Marshal(fields)
	if err != nil {
		return dispatch.Call{}, err
	}
	return dispatch.Call{Tool: tool, Input: input}, nil
}

// extractJSON returns the JSON object in reply: a json fenced block if there
// is one, otherwise the text between the outermost braces.
func extractJSON(reply string) string {
	if b, ok := fileblocks.First(reply, "json", ""); ok {
		if s := strings.TrimSpace(b.Content); strings.HasPrefix(s, "{") {
			return s
		}
	}
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}
