package docexport

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseVocabulary reads speaker labels from YAML:
//
//	teacher: [Cô, Cô giáo, Giáo viên]
//	child: [Trẻ, Cả lớp]
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v.Teacher = cleanLabels(v.Teacher)
	v.Child = cleanLabels(v.Child)
	if len(v.Teacher) == 0 || len(v.Child) == 0 {
		return Vocabulary{}, errors.New("parse vocabulary: teacher and child labels are both required")
	}
	return v, nil
}

// LoadVocabulary reads a vocabulary file. An empty path yields
// DefaultVocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

func cleanLabels(labels []string) []string {
	out := labels[:0]
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
