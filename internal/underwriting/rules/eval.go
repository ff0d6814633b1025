// internal/underwriting/rules/eval.go
package rules

import (
	"sort"

	"mortgage-workers/internal/models"
)

// FiredRule pairs a rule with the action it produced, in evaluation order.
type FiredRule struct {
	RuleID      string            `json:"ruleId"`
	GuidelineID string            `json:"guidelineId"`
	Name        string            `json:"name"`
	Priority    int               `json:"priority"`
	Action      models.RuleAction `json:"action"`
}

// EvaluationResult collects every fired rule. Actions are not deduplicated;
// a DENY anywhere makes the result-level outcome a denial regardless of the
// priorities of the other fired rules.
type EvaluationResult struct {
	Fired      []FiredRule `json:"fired"`
	Denied     bool        `json:"denied"`
	DenyReason string      `json:"denyReason,omitempty"`
}

// Actions returns the fired actions in order.
func (r *EvaluationResult) Actions() []models.RuleAction {
	actions := make([]models.RuleAction, 0, len(r.Fired))
	for _, f := range r.Fired {
		actions = append(actions, f.Action)
	}
	return actions
}

// RateAdjustment resolves conflicting ADJUST_RATE guidance: when more than
// one rate rule fired (overlapping tiers should not occur by construction,
// but guidelines are operator data), the highest-priority payload wins.
func (r *EvaluationResult) RateAdjustment() (models.RuleAction, bool) {
	best := models.RuleAction{}
	bestPriority := 0
	found := false
	for _, f := range r.Fired {
		if f.Action.Type != models.ActionAdjustRate {
			continue
		}
		if !found || f.Priority > bestPriority {
			best = f.Action
			bestPriority = f.Priority
			found = true
		}
	}
	return best, found
}

// Evaluate runs every rule in the knowledge base against the fact set.
// Fired rules are ordered by priority descending, then by load order so the
// output is reproducible for identical inputs.
func (kb *KnowledgeBase) Evaluate(facts *FactSet) *EvaluationResult {
	result := &EvaluationResult{}

	type firedAt struct {
		fired FiredRule
		order int
	}
	var fired []firedAt

	for i, rule := range kb.rules {
		if !ruleMatches(rule, facts) {
			continue
		}
		fired = append(fired, firedAt{
			fired: FiredRule{
				RuleID:      rule.ID,
				GuidelineID: rule.GuidelineID,
				Name:        rule.Name,
				Priority:    rule.Priority,
				Action:      rule.Action,
			},
			order: i,
		})
		if rule.Action.Type == models.ActionDeny && !result.Denied {
			result.Denied = true
			result.DenyReason = rule.Action.Reason
		}
	}

	sort.SliceStable(fired, func(a, b int) bool {
		if fired[a].fired.Priority != fired[b].fired.Priority {
			return fired[a].fired.Priority > fired[b].fired.Priority
		}
		return fired[a].order < fired[b].order
	})

	result.Fired = make([]FiredRule, 0, len(fired))
	for _, f := range fired {
		result.Fired = append(result.Fired, f.fired)
	}
	return result
}

// ruleMatches applies AND semantics across the rule's conditions.
func ruleMatches(rule models.Rule, facts *FactSet) bool {
	for _, cond := range rule.Conditions {
		if !conditionHolds(cond, facts) {
			return false
		}
	}
	return len(rule.Conditions) > 0
}

// conditionHolds evaluates one clause. Unknown fields and kind mismatches
// evaluate to false: a malformed rule cannot fire, and never errors.
func conditionHolds(cond models.RuleCondition, facts *FactSet) bool {
	value, ok := facts.lookup(cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case models.OpGreater, models.OpLess, models.OpGreaterEqual, models.OpLessEqual:
		if value.Kind != KindNumber {
			return false
		}
		want, ok := asNumber(cond.Value)
		if !ok {
			return false
		}
		return compareNumbers(value.Num, want, cond.Operator)

	case models.OpEqual, models.OpNotEqual:
		return compareEquality(value, cond.Value, cond.Operator)

	case models.OpIncludes:
		if value.Kind != KindList {
			return false
		}
		want, ok := asText(cond.Value)
		if !ok {
			return false
		}
		for _, item := range value.List {
			if item == want {
				return true
			}
		}
		return false

	default:
		return false
	}
}

func compareNumbers(got, want float64, op models.Operator) bool {
	switch op {
	case models.OpGreater:
		return got > want
	case models.OpLess:
		return got < want
	case models.OpGreaterEqual:
		return got >= want
	case models.OpLessEqual:
		return got <= want
	}
	return false
}

func compareEquality(value FactValue, raw interface{}, op models.Operator) bool {
	var equal bool
	switch value.Kind {
	case KindNumber:
		want, ok := asNumber(raw)
		if !ok {
			return false
		}
		equal = value.Num == want
	case KindText:
		want, ok := asText(raw)
		if !ok {
			return false
		}
		equal = value.Text == want
	default:
		return false
	}
	if op == models.OpNotEqual {
		return !equal
	}
	return equal
}

// asNumber accepts the numeric shapes JSON decoding can hand us.
func asNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asText(raw interface{}) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}
