package chat

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/dispatch"
)

// buildPrompt constructs the full prompt for one request. The workspace
// string is the rendered output of Snapshot.Render.
func buildPrompt(tools []dispatch.Tool, workspace, request string) string {
	return promptPrefix + renderTools(tools) + promptMiddle + workspace + promptSuffix + request + "\n"
}

func renderTools(tools []dispatch.Tool) string {
	var b strings.Builder
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "    %s (%s", f.Name, f.Type)
			if f.Required {
				b.WriteString(", required")
			}
			if len(f.Enum) > 0 {
				fmt.Fprintf(&b, ", one of %s", strings.Join(f.Enum, "|"))
			}
			b.WriteString(")")
			if f.Description != "" {
				b.WriteString(" " + f.Description)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const promptPrefix = `You are the planning assistant of reqtrack, a requirements and project tracker. Turn the user's request into a plan of tool calls against the workspace described below.

## Tools

`

const promptMiddle = `
## Workspace

`

const promptSuffix = `
## Reply format

Reply with a single JSON object in a ` + "```" + `json fenced block and nothing else:

` + "```" + `json
{
  "intent": "short description of what the plan does",
  "message": "optional text shown to the user",
  "toolCalls": [
    {"tool": "create_milestone", "input": {"name": "Design Complete", "dueDate": "2025-02-01"}},
    {"tool": "link_task_to_milestone", "input": {"task": "Write spec", "milestone": "design"}}
  ]
}
` + "```" + `

To create several items at once you may instead reply with:

` + "```" + `json
{"intent": "add tasks", "items": [{"type": "task", "title": "Draft API"}, {"type": "requirement", "title": "Users can log in"}]}
` + "```" + `

Rules:
1. Refer to entities by name, title or REQ key. Names are matched fuzzily against the workspace, so an exact id is never needed.
2. Steps run in order and a failed step does not stop later steps. Later steps see the effects of earlier ones, so a step may refer to something an earlier step creates.
3. Dates are YYYY-MM-DD. Resolve relative dates ("next friday") against Today.
4. Only use tools and fields listed above. Unknown fields are rejected.
5. If the request is a question the workspace already answers, reply with "message" and no toolCalls.
6. Never invent entities the user did not ask for.

## Request

`
