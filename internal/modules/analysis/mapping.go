package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed category_map.yaml
var defaultCategoryMapYAML []byte

// CategoryMap resolves raw food/medication item names to exposure category
// tags. The table is data, not code: it ships as embedded YAML and can be
// replaced wholesale via an external file without touching the scoring
// logic.
type CategoryMap struct {
	rules []mappingRule
}

type mappingRule struct {
	Match []string `yaml:"match"`
	Tags  []string `yaml:"tags"`
}

type mappingFile struct {
	Rules []mappingRule `yaml:"rules"`
}

// DefaultCategoryMap parses the embedded mapping table.
func DefaultCategoryMap() (*CategoryMap, error) {
	return ParseCategoryMap(defaultCategoryMapYAML)
}

// LoadCategoryMap reads a mapping table from disk.
func LoadCategoryMap(path string) (*CategoryMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category map %s: %w", path, err)
	}
	return ParseCategoryMap(raw)
}

func ParseCategoryMap(raw []byte) (*CategoryMap, error) {
	var file mappingFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse category map: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("category map has no rules")
	}
	rules := make([]mappingRule, 0, len(file.Rules))
	for i, r := range file.Rules {
		if len(r.Match) == 0 || len(r.Tags) == 0 {
			return nil, fmt.Errorf("category map rule %d missing match or tags", i)
		}
		norm := mappingRule{
			Match: make([]string, 0, len(r.Match)),
			Tags:  make([]string, 0, len(r.Tags)),
		}
		for _, m := range r.Match {
			norm.Match = append(norm.Match, normalizeItemName(m))
		}
		for _, t := range r.Tags {
			norm.Tags = append(norm.Tags, strings.TrimSpace(t))
		}
		rules = append(rules, norm)
	}
	return &CategoryMap{rules: rules}, nil
}

// Tags returns the sorted union of category tags for an item name. An empty
// result is not an error: unmapped items simply contribute no exposure.
func (m *CategoryMap) Tags(itemName string) []string {
	name := normalizeItemName(itemName)
	if name == "" {
		return nil
	}
	seen := map[string]bool{}
	for _, rule := range m.rules {
		for _, kw := range rule.Match {
			if strings.Contains(name, kw) {
				for _, t := range rule.Tags {
					seen[t] = true
				}
				break
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func normalizeItemName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
