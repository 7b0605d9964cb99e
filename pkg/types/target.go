// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionTarget names a supported output representation. The set is
// closed: selecting a target outside it falls back to plain text when
// exporting. Per prd001-conversion R1.1.
type ConversionTarget string

const (
	TargetJSON     ConversionTarget = "json"
	TargetXML      ConversionTarget = "xml"
	TargetCSV      ConversionTarget = "csv"
	TargetMarkdown ConversionTarget = "markdown"
	TargetHTML     ConversionTarget = "html"
	TargetLaTeX    ConversionTarget = "latex"
	TargetSQL      ConversionTarget = "sql"
	TargetYAML     ConversionTarget = "yaml"
	TargetWord     ConversionTarget = "word"
	TargetText     ConversionTarget = "text"
	TargetMermaid  ConversionTarget = "mermaid"
)

// AllTargets lists every supported target in display order.
var AllTargets = []ConversionTarget{
	TargetJSON, TargetXML, TargetCSV, TargetMarkdown, TargetHTML,
	TargetLaTeX, TargetSQL, TargetYAML, TargetWord, TargetText,
	TargetMermaid,
}

// Valid reports whether t is a member of the supported target set.
func (t ConversionTarget) Valid() bool {
	for _, known := range AllTargets {
		if t == known {
			return true
		}
	}
	return false
}

// PromptName returns the human-readable format name used when describing
// the target to the AI backend (e.g. "Word Document (as HTML)" rather
// than "word").
func (t ConversionTarget) PromptName() string {
	if name, ok := promptNames[t]; ok {
		return name
	}
	return "Plain Text"
}

var promptNames = map[ConversionTarget]string{
	TargetJSON:     "JSON",
	TargetXML:      "XML",
	TargetCSV:      "CSV",
	TargetMarkdown: "Markdown",
	TargetHTML:     "HTML",
	TargetLaTeX:    "LaTeX",
	TargetSQL:      "SQL",
	TargetYAML:     "YAML",
	TargetWord:     "Word Document (as HTML)",
	TargetText:     "Plain Text",
	TargetMermaid:  "Mermaid Diagram",
}

// ExportSpec describes how a conversion result is materialized when the
// caller saves it: the file extension (without dot) and the content type.
type ExportSpec struct {
	Extension   string `json:"extension" yaml:"extension"`
	ContentType string `json:"content_type" yaml:"content_type"`
}

// exportSpecs maps each target to its export extension and content type.
// Per prd001-conversion R4.2 the mapping is total over the target set;
// Export falls back to plain text for anything else.
var exportSpecs = map[ConversionTarget]ExportSpec{
	TargetJSON:     {Extension: "json", ContentType: "application/json"},
	TargetXML:      {Extension: "xml", ContentType: "application/xml"},
	TargetCSV:      {Extension: "csv", ContentType: "text/csv"},
	TargetMarkdown: {Extension: "md", ContentType: "text/markdown"},
	TargetHTML:     {Extension: "html", ContentType: "text/html"},
	TargetLaTeX:    {Extension: "tex", ContentType: "application/x-latex"},
	TargetSQL:      {Extension: "sql", ContentType: "application/sql"},
	TargetYAML:     {Extension: "yaml", ContentType: "application/x-yaml"},
	TargetWord:     {Extension: "doc", ContentType: "application/msword"},
	TargetText:     {Extension: "txt", ContentType: "text/plain"},
	TargetMermaid:  {Extension: "mmd", ContentType: "text/plain"},
}

// Export returns the extension and content type used when saving a result
// converted to t. Unrecognized targets export as plain text.
func (t ConversionTarget) Export() ExportSpec {
	if spec, ok := exportSpecs[t]; ok {
		return spec
	}
	return ExportSpec{Extension: "txt", ContentType: "text/plain"}
}
