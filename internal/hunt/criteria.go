// Package hunt implements the AI-driven lead hunt job: one work unit per
// search criterion, candidates parked for human review.
package hunt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CriteriaFile is the YAML document describing what a hunt looks for.
type CriteriaFile struct {
	Criteria []string `yaml:"criteria"`
}

// LoadCriteria reads search criteria from a YAML file, dropping blank
// entries.
func LoadCriteria(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}

	var file CriteriaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse criteria file: %w", err)
	}

	var out []string
	for _, c := range file.Criteria {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("criteria file %s contains no criteria", path)
	}
	return out, nil
}

// Params builds the job parameter snapshot for a criteria list. The snapshot
// is complete: resuming never re-reads the criteria file.
func Params(criteria []string) map[string]any {
	vals := make([]any, len(criteria))
	for i, c := range criteria {
		vals[i] = c
	}
	return map[string]any{"criteria": vals}
}

func criteriaFromParams(params map[string]any) ([]string, error) {
	raw, ok := params["criteria"]
	if !ok {
		return nil, fmt.Errorf("missing criteria parameter")
	}

	list, ok := raw.([]any)
	if !ok {
		// Round-tripping through the store may decode into []string.
		if strs, ok := raw.([]string); ok {
			return strs, nil
		}
		return nil, fmt.Errorf("criteria parameter must be a list")
	}

	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("criteria entries must be non-empty strings")
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("criteria list is empty")
	}
	return out, nil
}
