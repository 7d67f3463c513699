package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
)

// Overlay contains conversation data to visualize on the chart.
type Overlay struct {
	Answered []domain.Question
	Current  domain.Question
}

// Node IDs of the synthetic start and end nodes.
const (
	startID = "start"
	doneID  = "done"
)

// GenerateMermaid produces a Mermaid flowchart of the question sequence.
// It applies semantic styling:
// - Start and completion: ((Circle))
// - Free text (name): [/Parallelogram/]
// - Validated answers (number, date, age): {{Hexagon}}
// It also applies overlay styles (answered/current) if provided.
func GenerateMermaid(seq *flow.Sequence, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"start\"))\n", startID))

	prev := startID
	for _, step := range seq.Steps() {
		safeID := sanitizeMermaidID(string(step.Question))

		opener, closer := "{{", "}}"
		if step.Kind == flow.KindName {
			opener, closer = "[/", "/]"
		}

		label := escapeLabel(step.Prompt)
		if expected, ok := step.ExpectedValue(); ok {
			label = fmt.Sprintf("%s <br/> = %d", label, expected)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		arrow := "-->"
		if prev == startID {
			arrow = "-- \"any message\" -->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", prev, arrow, safeID))
		prev = safeID
	}

	sb.WriteString(fmt.Sprintf("    %s((\"done\"))\n", doneID))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, doneID))
	sb.WriteString(fmt.Sprintf("    %s -.->|\"run again\"| %s\n", doneID, startID))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, q := range overlay.Answered {
			safeID := sanitizeMermaidID(string(q))
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		current := startID
		if !overlay.Current.IsNone() {
			current = sanitizeMermaidID(string(overlay.Current))
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
