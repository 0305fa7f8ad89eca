package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/dispatch"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StepHeader prints a timestamped plan step header.
func StepHeader(index, total int, tool string) {
	fmt.Printf("%s[%s]%s  %sStep %d/%d: %s%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, tool, Reset)
}

// StepComplete prints a step's message and any warning.
func StepComplete(index int, message, warning string, duration time.Duration) {
	fmt.Printf("%s[%s]%s  %s✓ %s%s %s(%dms)%s\n",
		Dim, timestamp(), Reset, Green, message, Reset, Dim, duration.Milliseconds(), Reset)
	if warning != "" {
		fmt.Printf("%s[%s]%s  %s⚠ step %d: %s%s\n", Dim, timestamp(), Reset, Yellow, index+1, warning, Reset)
	}
}

// StepFail prints a step failure message.
func StepFail(index int, tool, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ Step %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, tool, errMsg, Reset)
}

// StepSkip prints a step that never ran.
func StepSkip(index int, tool, reason string) {
	fmt.Printf("%s[%s]%s  %s– Step %d (%s) skipped: %s%s\n",
		Dim, timestamp(), Reset, Dim, index+1, tool, reason, Reset)
}

// PlanDone prints the final tally of a plan.
func PlanDone(total, failed int) {
	if failed == 0 {
		fmt.Printf("\n%s%s══ All %d steps complete ══%s\n\n", Bold, Green, total, Reset)
		return
	}
	fmt.Printf("\n%s%s══ %d of %d steps failed ══%s\n\n", Bold, Yellow, failed, total, Reset)
}

// Error prints err in red on stderr.
func Error(err error) {
	fmt.Fprintf(os.Stderr, "%serror:%s %v\n", Red, Reset, err)
}

// Warn prints a warning on stderr.
func Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%swarning:%s %s\n", Yellow, Reset, fmt.Sprintf(format, args...))
}

// RenderResult prints a tool result. With asJSON the envelope is printed
// verbatim; otherwise the message, warning or error and hint lists.
func RenderResult(res dispatch.Result, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	if !res.Success {
		fmt.Printf("%s✗ %s%s\n", Red, res.Error, Reset)
		renderHints(res)
		return nil
	}
	fmt.Printf("%s✓%s %s\n", Green, Reset, res.Message())
	if res.Warning != "" {
		fmt.Printf("%s⚠ %s%s\n", Yellow, res.Warning, Reset)
	}
	keys := make([]string, 0, len(res.Payload))
	for k := range res.Payload {
		if k != "message" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b, err := json.MarshalIndent(res.Payload[k], "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("  %s%s:%s %s\n", Bold, k, Reset, b)
	}
	return nil
}

func renderHints(res dispatch.Result) {
	for k, v := range res.Payload {
		if !strings.HasPrefix(k, "available") {
			continue
		}
		fmt.Printf("  %s%s:%s\n", Dim, k, Reset)
		switch hints := v.(type) {
		case []dispatch.Candidate:
			for _, c := range hints {
				label := c.Name
				if c.Key != "" {
					label = c.Key + " " + c.Name
				}
				fmt.Printf("    - %s %s(%s)%s\n", label, Dim, c.ID, Reset)
			}
		case []string:
			fmt.Printf("    %s\n", strings.Join(hints, ", "))
		}
	}
}

// RenderCatalog prints the tool catalog.
func RenderCatalog(tools []dispatch.Tool) {
	for _, t := range tools {
		fmt.Printf("%s%s%s  %s\n", Bold, t.Name, Reset, t.Description)
		for _, f := range t.Fields {
			req := ""
			if f.Required {
				req = Yellow + " (required)" + Reset
			}
			line := fmt.Sprintf("    %s%-20s%s %s%s", Cyan, f.Name, Reset, f.Type, req)
			if len(f.Enum) > 0 {
				line += fmt.Sprintf(" %s[%s]%s", Dim, strings.Join(f.Enum, "|"), Reset)
			}
			if f.Description != "" {
				line += "  " + f.Description
			}
			fmt.Println(line)
		}
	}
}
