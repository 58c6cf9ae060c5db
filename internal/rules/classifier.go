package rules

import (
	"strings"

	"network-ai-monitor/internal/model"
)

// DefaultClass is the class used for interfaces that match no rule.
const DefaultClass = "other"

// Classify compares a reading against a profile. Limits are inclusive and the
// inbound direction is checked first.
func Classify(reading model.RateReading, profile model.ThresholdProfile) model.Verdict {
	if reading.InboundMbps >= profile.InboundLimitMbps {
		return model.Verdict_ANOMALY_INBOUND
	}
	if reading.OutboundMbps >= profile.OutboundLimitMbps {
		return model.Verdict_ANOMALY_OUTBOUND
	}
	return model.Verdict_NORMAL
}

// ClassRule maps interface names containing any of the substrings to a class.
type ClassRule struct {
	Class    string   `yaml:"class" json:"class"`
	Contains []string `yaml:"contains" json:"contains"`
}

// DefaultClassRules reproduces the wifi/ethernet naming convention.
func DefaultClassRules() []ClassRule {
	return []ClassRule{
		{Class: "wifi", Contains: []string{"wi", "wlan"}},
		{Class: "ethernet", Contains: []string{"eth"}},
	}
}

// ClassResolver turns raw interface names into logical classes.
type ClassResolver struct {
	rules        []ClassRule
	defaultClass string
}

func NewClassResolver(rules []ClassRule, defaultClass string) *ClassResolver {
	if defaultClass == "" {
		defaultClass = DefaultClass
	}
	normalized := make([]ClassRule, 0, len(rules))
	for _, r := range rules {
		subs := make([]string, 0, len(r.Contains))
		for _, sub := range r.Contains {
			if sub = strings.ToLower(strings.TrimSpace(sub)); sub != "" {
				subs = append(subs, sub)
			}
		}
		normalized = append(normalized, ClassRule{Class: r.Class, Contains: subs})
	}
	return &ClassResolver{
		rules:        normalized,
		defaultClass: defaultClass,
	}
}

// Resolve matches case-insensitively; the first matching rule wins.
func (c *ClassResolver) Resolve(interfaceID string) string {
	name := strings.ToLower(interfaceID)
	for _, r := range c.rules {
		for _, sub := range r.Contains {
			if strings.Contains(name, sub) {
				return r.Class
			}
		}
	}
	return c.defaultClass
}

func (c *ClassResolver) DefaultClass() string {
	return c.defaultClass
}
