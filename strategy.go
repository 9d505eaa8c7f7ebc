package onyx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Rule is one item of a strategy checklist.
type Rule struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UnmarshalJSON reads a rule whose id is either a JSON string or a number.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Text string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Text = raw.Text
	r.ID = ""
	switch id := bytes.TrimSpace(raw.ID); {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
	case id[0] == '"':
		return json.Unmarshal(id, &r.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(id, &n); err != nil {
			return fmt.Errorf("invalid rule id %s: %w", id, err)
		}
		r.ID = n.String()
	}
	return nil
}

// Strategy is a named checklist with a default dollar risk per trade.
type Strategy struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Risk  Money  `json:"risk"`
	Rules []Rule `json:"rules"`
}

func (s Strategy) clone() Strategy {
	s.Rules = slices.Clone(s.Rules)
	return s
}

// Profile describes the trader owning the journal.
type Profile struct {
	Name              string `json:"name"`
	Goal              string `json:"goal"`
	Mantra            string `json:"mantra"`
	BiometricsEnabled bool   `json:"biometricsEnabled"`
}

// DefaultStrategyID is the id of the strategy every new journal starts with.
const DefaultStrategyID = "default_pa"

// DefaultRules returns the checklist given to new strategies.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "1", Text: "Identify Key Level (S/R)"},
		{ID: "2", Text: "Wait for Rejection Candle"},
		{ID: "3", Text: "Confirm Trend Direction"},
		{ID: "4", Text: "Risk/Reward > 1:2"},
	}
}

// DefaultStrategy returns the strategy every new journal starts with.
func DefaultStrategy() Strategy {
	return Strategy{
		ID:    DefaultStrategyID,
		Name:  "Price Action Basics",
		Risk:  M(100),
		Rules: DefaultRules(),
	}
}

// DefaultTags returns the initial tag vocabulary.
func DefaultTags() []string {
	return []string{"A+ Setup", "Trend", "Reversal", "Impulse", "Chop"}
}

// DefaultProfile returns the profile of a new journal.
func DefaultProfile() Profile {
	return Profile{
		Name:   "Trader",
		Goal:   "Consistent Profitability",
		Mantra: "Plan the trade, trade the plan.",
	}
}

// modelStrategyName returns the name of a strategy promoted from a tag model.
func modelStrategyName(tags []string) string {
	return "Model: " + strings.Join(tags, " + ")
}

// modelRules returns one checklist rule per tag, in tag order.
func modelRules(tags []string) []Rule {
	rules := make([]Rule, len(tags))
	for i, tag := range tags {
		rules[i] = Rule{ID: strconv.Itoa(i + 1), Text: tag}
	}
	return rules
}
