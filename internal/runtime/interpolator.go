package runtime

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Interpolator renders a reply template against turn data.
type Interpolator func(ctx context.Context, templateStr string, data any) (string, error)

// DefaultInterpolator uses text/template with no extra functions.
// Templates without actions are returned unchanged.
func DefaultInterpolator(_ context.Context, templateStr string, data any) (string, error) {
	if !strings.Contains(templateStr, "{{") {
		return templateStr, nil
	}
	tmpl, err := template.New("reply").Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", templateStr, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", templateStr, err)
	}
	return sb.String(), nil
}
