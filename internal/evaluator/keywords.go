package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/job-hunter/internal/decode"
	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/search"
)

// MaxKeywords caps the number of keywords taken from a profile
const MaxKeywords = 10

// ExtractKeywords asks the model for the main technical skills in a
// candidate profile. Keywords are lowercased and deduplicated.
func ExtractKeywords(ctx context.Context, completer llm.Completer, profile string) ([]string, error) {
	if strings.TrimSpace(profile) == "" {
		return nil, fmt.Errorf("candidate profile is empty")
	}

	prompt := llm.BuildExtractionPrompt(llm.CandidateKeywordsSchema(),
		llm.InputSection{Label: "Candidate profile", Text: search.Truncate(profile, DefaultMaxProfileChars)},
	)
	reply, err := completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to extract keywords: %w", err)
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := decode.DecodeInto(reply, &out); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}

	seen := make(map[string]bool, len(out.Keywords))
	keywords := make([]string, 0, len(out.Keywords))
	for _, k := range out.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords found in candidate profile")
	}
	return keywords, nil
}
