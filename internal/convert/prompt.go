// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/format-engine/pkg/types"
)

// conversionPromptTmpl is the prompt sent to the Claude API for each
// conversion. It names the target format and pins the output contract:
// converted content only, no commentary, no code fences.
var conversionPromptTmpl = template.Must(template.New("conversion").Parse(`Convert the provided content into {{.Format}} format.

Rules:
- Preserve all information from the source; do not summarize or omit data.
- Produce syntactically valid {{.Format}} output.
- Respond with the converted content only. No explanation, no surrounding code fences.
{{- if .Instructions}}

Additional instructions: {{.Instructions}}
{{- end}}
{{- if .Content}}

Content to convert:
{{.Content}}
{{- end}}
`))

// renderPrompt builds the prompt text for a request. Instructions are
// appended exactly once, after the rules and before the content, and the
// rule is identical for text and binary transports: binary requests
// simply render with empty Content and carry the source as an attached
// document block instead.
func renderPrompt(target types.ConversionTarget, instructions, content string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Format       string
		Instructions string
		Content      string
	}{
		Format:       target.PromptName(),
		Instructions: instructions,
		Content:      content,
	}
	if err := conversionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
