package migration

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
)

const malformedRuleText = "Replace path contained neither valid .new or valid .delete"

// Rule is either a Replace or a Delete. The set of implementations is closed.
type Rule interface {
	// Target is the substring a location must contain for the rule to apply.
	Target() string
	String() string
	rule()
}

// Replace substitutes New for the first occurrence of Old in a location.
type Replace struct {
	Old string
	New string
}

// Delete drops every track whose location contains Old.
type Delete struct {
	Old string
}

// ReplaceRule returns a rule rewriting oldPart to newPart.
func ReplaceRule(oldPart, newPart string) Rule { return Replace{Old: oldPart, New: newPart} }

// DeleteRule returns a rule dropping tracks located under oldPart.
func DeleteRule(oldPart string) Rule { return Delete{Old: oldPart} }

func (r Replace) Target() string { return r.Old }
func (r Delete) Target() string  { return r.Old }

func (Replace) rule() {}
func (Delete) rule()  {}

func (r Replace) String() string { return RawFromRule(r).String() }
func (r Delete) String() string  { return RawFromRule(r).String() }

// RawRule is the wire form of a rule as it appears in rule files and API input.
type RawRule struct {
	Old    string `json:"old" yaml:"old" toml:"old"`
	New    string `json:"new,omitempty" yaml:"new,omitempty" toml:"new,omitempty"`
	Delete bool   `json:"delete,omitempty" yaml:"delete,omitempty" toml:"delete,omitempty"`
}

// Validate requires old plus exactly one of new or delete.
func (r RawRule) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Old, validation.Required),
	); err != nil {
		return err
	}
	if r.Delete == (r.New != "") {
		return errors.New("exactly one of new or delete must be set")
	}
	return nil
}

// Rule converts r into its typed form.
func (r RawRule) Rule() (Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %s: %v", apperr.ErrMalformedRule, malformedRuleText, r, err)
	}
	if r.Delete {
		return Delete{Old: r.Old}, nil
	}
	return Replace{Old: r.Old, New: r.New}, nil
}

func (r RawRule) String() string {
	// Marshaling three plain fields cannot fail.
	data, _ := json.Marshal(r)
	return string(data)
}

// RawFromRule converts a typed rule back to its wire form.
func RawFromRule(r Rule) RawRule {
	switch r := r.(type) {
	case Replace:
		return RawRule{Old: r.Old, New: r.New}
	case Delete:
		return RawRule{Old: r.Old, Delete: true}
	}
	return RawRule{}
}

// ParseRules converts every raw rule, stopping at the first malformed one.
func ParseRules(raw []RawRule) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for i, r := range raw {
		rule, err := r.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
