package audit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk YAML shape of a rule set.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRuleFile reads and validates a YAML rule set. Operators use this to
// seed or replace the stored rules without touching the database directly.
func LoadRuleFile(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule file %s: no rules defined", path)
	}
	if err := Validate(file.Rules); err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return file.Rules, nil
}
