package catalog

import (
	"strings"
)

const (
	DefaultGroup string = "halls-gap"
)

var defaultFormNames = map[string]string{
	"halls-gap":          "Halls Gap LCG",
	"jallukar":           "Jallukar LCG",
	"moyston":            "Moyston LCG",
	"black-range":        "Black Range LMG",
	"elmhurst":           "Elmhurst LCG",
	"northern-grampians": "Northern Grampians LCG",
}

// GroupMapping maps landcare groups to the fixed form names their surveys are
// stored under. Caller supplied group names never reach query text; only the
// mapped form names do.
type GroupMapping struct {
	formNames map[string]string
}

// NewGroupMapping starts from the built-in groups and applies overrides.
func NewGroupMapping(overrides map[string]string) *GroupMapping {
	formNames := make(map[string]string, len(defaultFormNames)+len(overrides))
	for k, v := range defaultFormNames {
		formNames[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		formNames[strings.ToLower(k)] = v
	}
	return &GroupMapping{formNames: formNames}
}

// FormNameForGroup looks the group up case-insensitively, falling back to the
// default group's form.
func (g *GroupMapping) FormNameForGroup(group string) string {
	if group == "" {
		group = DefaultGroup
	}
	if formName, ok := g.formNames[strings.ToLower(group)]; ok {
		return formName
	}
	return g.formNames[DefaultGroup]
}
