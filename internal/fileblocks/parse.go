// Package fileblocks extracts fenced code blocks from model output.
package fileblocks

import (
	"regexp"
	"strings"
)

// Block is one fenced block.
type Block struct {
	Lang    string // e.g. "json"; empty for a bare fence
	Content string // content between the fences
}

var fenceOpenRe = regexp.MustCompile("^```\\s*([\\w+-]*)")

// Parse extracts fenced code blocks from text in order of appearance. It
// recognizes opening fences like:
//
//	```json
//	```
//	``` JSON
//
// An unterminated final block is kept.
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block
	var current *Block
	var buf strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if current != nil {
			if trimmed == "```" {
				current.Content = buf.String()
				blocks = append(blocks, *current)
				current = nil
				buf.Reset()
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			continue
		}

		if m := fenceOpenRe.FindStringSubmatch(trimmed); m != nil {
			current = &Block{Lang: strings.ToLower(m[1])}
			buf.Reset()
		}
	}
	if current != nil && buf.Len() > 0 {
		current.Content = buf.String()
		blocks = append(blocks, *current)
	}
	return blocks
}

// First returns the first block whose language is one of langs. An empty
// string in langs matches bare fences.
func First(text string, langs ...string) (Block, bool) {
	for _, b := range Parse(text) {
		for _, l := range langs {
			if b.Lang == l {
				return b, true
			}
		}
	}
	return Block{}, false
}
