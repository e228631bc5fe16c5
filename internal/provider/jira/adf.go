package jira

import "strings"

// Atlassian Document Format handling. Jira Cloud returns rich-text
// bodies (descriptions, comments) as nested block/inline node trees;
// the canonical model wants plain text.

// blockNodes are ADF node types that introduce a line boundary.
var blockNodes = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"blockquote":  true,
	"codeBlock":   true,
	"listItem":    true,
	"tableRow":    true,
	"rule":        true,
	"mediaSingle": true,
}

// FlattenADF reduces an ADF document to plain text: inline text nodes
// concatenate, block boundaries become newlines, and trailing
// whitespace is trimmed from the result.
func FlattenADF(doc map[string]any) string {
	if doc == nil {
		return ""
	}

	var sb strings.Builder
	flattenNode(&sb, doc)

	return strings.TrimRight(sb.String(), " \t\n")
}

func flattenNode(sb *strings.Builder, node map[string]any) {
	nodeType, _ := node["type"].(string)

	switch nodeType {
	case "text":
		if text, ok := node["text"].(string); ok {
			sb.WriteString(text)
		}

		return
	case "hardBreak":
		sb.WriteString("\n")

		return
	case "mention":
		if attrs, ok := node["attrs"].(map[string]any); ok {
			if text, ok := attrs["text"].(string); ok {
				sb.WriteString(text)
			}
		}

		return
	}

	children, _ := node["content"].([]any)
	for _, child := range children {
		childMap, ok := child.(map[string]any)
		if !ok {
			continue
		}

		childType, _ := childMap["type"].(string)
		if blockNodes[childType] && sb.Len() > 0 {
			sb.WriteString("\n")
		}

		flattenNode(sb, childMap)
	}
}

// TextToADF wraps plain text into a minimal ADF document for write
// calls. Each line becomes one paragraph.
func TextToADF(text string) map[string]any {
	lines := strings.Split(text, "\n")
	content := make([]any, 0, len(lines))
	for _, line := range lines {
		paragraph := map[string]any{"type": "paragraph"}
		if line != "" {
			paragraph["content"] = []any{map[string]any{"type": "text", "text": line}}
		}
		content = append(content, paragraph)
	}

	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}
