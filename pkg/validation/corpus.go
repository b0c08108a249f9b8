package validation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/redline-eval/redline/pkg/scoring"
)

// Item is one labelled narrative.
type Item struct {
	ID        string                 `yaml:"id" json:"id"`
	Narrative string                 `yaml:"narrative" json:"narrative"`
	Expected  scoring.Classification `yaml:"expected" json:"expected"`
	// Reviewer is an optional second human label for inter-rater agreement.
	Reviewer scoring.Classification `yaml:"reviewer,omitempty" json:"reviewer,omitempty"`
}

// Corpus is a labelled set of narratives.
type Corpus struct {
	Name  string `yaml:"name" json:"name"`
	Items []Item `yaml:"items" json:"items"`
}

// Validate checks ids and labels.
func (c *Corpus) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("corpus has no items")
	}
	seen := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		if it.ID == "" {
			return fmt.Errorf("item %d: missing id", i)
		}
		if seen[it.ID] {
			return fmt.Errorf("item %s: duplicate id", it.ID)
		}
		seen[it.ID] = true
		if !validLabel(it.Expected) {
			return fmt.Errorf("item %s: expected must be %s or %s, got %q", it.ID, scoring.Qualifying, scoring.NonQualifying, it.Expected)
		}
		if it.Reviewer != "" && !validLabel(it.Reviewer) {
			return fmt.Errorf("item %s: invalid reviewer label %q", it.ID, it.Reviewer)
		}
	}
	return nil
}

func validLabel(c scoring.Classification) bool {
	return c == scoring.Qualifying || c == scoring.NonQualifying
}

// ParseCorpus decodes and validates a YAML corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid corpus: %w", err)
	}
	return &c, nil
}

// LoadCorpus reads a corpus file.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return ParseCorpus(data)
}
