package llm

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Output is the text of a model reply plus the accounting the CLI reports.
type Output struct {
	Text      string
	CostUSD   float64
	SessionID string
}

// resultEvent is the object printed by --output-format json.
type resultEvent struct {
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	IsError      bool    `json:"is_error"`
	Result       string  `json:"result"`
	SessionID    string  `json:"session_id"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	CostUSD      float64 `json:"cost_usd"`
}

// parseOutput extracts the reply from the CLI's stdout. Output that is not a
// result event is returned verbatim as the reply text.
func parseOutput(data []byte) (Output, error) {
	trimmed := bytes.TrimSpace(data)
	var ev resultEvent
	if err := json.Unmarshal(trimmed, &ev); err != nil || ev.Type != "result" {
		return Output{Text: string(trimmed)}, nil
	}
	if ev.IsError {
		msg := ev.Result
		if msg == "" {
			msg = ev.Subtype
		}
		return Output{}, errors.New("model returned an error: " + msg)
	}
	out := Output{Text: ev.Result, SessionID: ev.SessionID, CostUSD: ev.TotalCostUSD}
	if out.CostUSD == 0 {
		out.CostUSD = ev.CostUSD
	}
	return out, nil
}
