// Package llm - extractor.go builds single-shot structured extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "PostingAnalysis", "CandidateKeywords")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// InputSection is one labelled block of input text
type InputSection struct {
	Label string
	Text  string
}

// BuildExtractionPrompt constructs the LLM prompt from schema and labelled input sections.
func BuildExtractionPrompt(schema ExtractionSchema, sections ...InputSection) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Base every value on the input below, do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no text outside the braces.\n")

	for _, section := range sections {
		sb.WriteString(fmt.Sprintf("\n%s:\n\"\"\"\n", section.Label))
		sb.WriteString(section.Text)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}

// --- Predefined Schemas ---

// PostingAnalysisSchema returns the schema for judging one posting against a candidate.
func PostingAnalysisSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "PostingAnalysis",
		Description: `Role: Technical recruiter.
Task: Evaluate how well the candidate matches the job posting and summarise the posting.
Be strict about red flags: low or hidden salary, on-site work presented as remote, legacy stacks.`,
		Fields: []SchemaField{
			{Name: "title", Type: "\"string\"", Description: "Clean job title", Required: true},
			{Name: "company_name", Type: "\"string\"", Description: "Hiring company"},
			{Name: "match_score", Type: "number", Description: "0.0 to 1.0", Required: true},
			{Name: "match_reasons", Type: "[\"string\"]", Description: "Why the candidate fits or not"},
			{Name: "red_flags", Type: "[\"string\"]"},
			{Name: "skills_analysis", Type: "{\"matching\": [\"string\"], \"missing\": [\"string\"]}"},
			{Name: "requirements", Type: "[\"string\"]"},
			{Name: "responsibilities", Type: "[\"string\"]"},
			{Name: "skills", Type: "[\"string\"]"},
			{Name: "description", Type: "\"string\"", Description: "Short summary"},
			{Name: "location", Type: "\"string\"", Description: "City or Remote"},
			{Name: "is_remote", Type: "boolean"},
			{Name: "job_type", Type: "\"full_time|part_time|contract|freelance|internship\""},
			{Name: "experience_level", Type: "\"entry|junior|mid|senior|lead\""},
			{Name: "salary_normalized", Type: "number", Description: "Yearly salary in USD if stated"},
		},
	}
}

// CandidateKeywordsSchema returns the schema for pulling search keywords out of a CV.
func CandidateKeywordsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CandidateKeywords",
		Description: `Role: Senior technical recruiter.
Task: Extract the key technical skills from the candidate profile. Prefer concrete technologies over soft skills.`,
		Fields: []SchemaField{
			{Name: "keywords", Type: "[\"string\"]", Description: "Lowercase skill names, most important first", Required: true},
		},
	}
}
