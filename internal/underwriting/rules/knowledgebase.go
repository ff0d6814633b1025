// internal/underwriting/rules/knowledgebase.go
package rules

import (
	"fmt"

	"mortgage-workers/internal/models"
)

// KnowledgeBase owns an ordered, versioned collection of guideline rules.
// It is an explicitly constructed value handed to its consumers; there is no
// package-level singleton. Rules are append-only during initialization and
// immutable afterwards, so concurrent evaluations share it freely.
type KnowledgeBase struct {
	version string
	rules   []models.Rule
	sealed  bool
}

// NewKnowledgeBase returns an empty knowledge base tagged with a guideline
// set version (e.g. "2025.2").
func NewKnowledgeBase(version string) *KnowledgeBase {
	return &KnowledgeBase{version: version}
}

// Version returns the guideline set version.
func (kb *KnowledgeBase) Version() string { return kb.version }

// AddRule appends a rule. Only valid during initialization; adding after
// Seal, a duplicate ID, or an untagged action is rejected.
func (kb *KnowledgeBase) AddRule(rule models.Rule) error {
	if kb.sealed {
		return fmt.Errorf("knowledge base %s is sealed", kb.version)
	}
	if rule.ID == "" {
		return fmt.Errorf("rule missing id")
	}
	switch rule.Action.Type {
	case models.ActionRequireDocument, models.ActionAdjustRate,
		models.ActionFlagRisk, models.ActionDeny:
	default:
		return fmt.Errorf("rule %s: unknown action type %q", rule.ID, rule.Action.Type)
	}
	for _, existing := range kb.rules {
		if existing.ID == rule.ID {
			return fmt.Errorf("rule %s already registered", rule.ID)
		}
	}
	kb.rules = append(kb.rules, rule)
	return nil
}

// Seal freezes the rule list. Evaluate works before and after sealing;
// sealing only closes the append window.
func (kb *KnowledgeBase) Seal() { kb.sealed = true }

// Rules returns a copy of the rule list in load order.
func (kb *KnowledgeBase) Rules() []models.Rule {
	out := make([]models.Rule, len(kb.rules))
	copy(out, kb.rules)
	return out
}

// Guidelines returns the distinct guideline IDs in first-seen order.
func (kb *KnowledgeBase) Guidelines() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range kb.rules {
		if r.GuidelineID == "" || seen[r.GuidelineID] {
			continue
		}
		seen[r.GuidelineID] = true
		ids = append(ids, r.GuidelineID)
	}
	return ids
}
