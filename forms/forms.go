// Package forms validates dynamic form submissions against a declared field
// schema. The field type set is closed: a schema naming an unknown type is
// rejected up front instead of falling back to a default widget.
package forms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// FieldType is the closed set of supported field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldFile     FieldType = "file"
	FieldMarkdown FieldType = "markdown"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

var fieldTypes = map[FieldType]struct{}{
	FieldText:     {},
	FieldTextarea: {},
	FieldNumber:   {},
	FieldDate:     {},
	FieldSelect:   {},
	FieldFile:     {},
	FieldMarkdown: {},
}

// ParseFieldType validates a raw type name against the closed set.
func ParseFieldType(raw string) (FieldType, error) {
	ft := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := fieldTypes[ft]; !ok {
		return "", goerrors.New("unknown form field type", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"type": raw})
	}
	return ft, nil
}

// Rules carries optional per-field constraints.
type Rules struct {
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// Field declares one form input.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	Rules    *Rules    `json:"rules,omitempty"`
}

// Validate checks that the field declaration itself is usable.
func (f Field) Validate() error {
	if f.Key == "" {
		return goerrors.New("form field missing key", goerrors.CategoryBadInput)
	}
	if _, err := ParseFieldType(string(f.Type)); err != nil {
		return err
	}
	if f.Type == FieldSelect && len(f.Options) == 0 {
		return goerrors.New("select field declares no options", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"key": f.Key})
	}
	if f.Rules != nil && f.Rules.Pattern != "" {
		if _, err := regexp.Compile(f.Rules.Pattern); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid field pattern").
				WithMetadata(map[string]any{"key": f.Key})
		}
	}
	return nil
}

// Form is an ordered field schema.
type Form []Field

// Validate checks every field declaration.
func (f Form) Validate() error {
	seen := map[string]struct{}{}
	for _, field := range f {
		if err := field.Validate(); err != nil {
			return err
		}
		if _, dup := seen[field.Key]; dup {
			return goerrors.New("duplicate form field key", goerrors.CategoryBadInput).
				WithMetadata(map[string]any{"key": field.Key})
		}
		seen[field.Key] = struct{}{}
	}
	return nil
}

// Check validates a submission against the schema. The returned map holds
// one human-readable message per failing field; an empty map means the
// submission passed.
func (f Form) Check(data map[string]any) map[string]string {
	errs := map[string]string{}

	for _, field := range f {
		value, ok := data[field.Key]
		if !ok || isEmpty(value) {
			if field.Required {
				errs[field.Key] = fmt.Sprintf("%s is required", field.label())
			}
			continue
		}

		if msg := field.check(value); msg != "" {
			errs[field.Key] = msg
		}
	}

	return errs
}

// Normalize coerces a submission into canonical values: strings trimmed,
// numbers as float64, dates re-rendered in DateLayout. Unknown keys are
// dropped. It assumes Check passed.
func (f Form) Normalize(data map[string]any) map[string]any {
	out := map[string]any{}

	for _, field := range f {
		value, ok := data[field.Key]
		if !ok || isEmpty(value) {
			continue
		}

		switch field.Type {
		case FieldNumber:
			if n, ok := toNumber(value); ok {
				out[field.Key] = n
			}
		case FieldDate:
			if s, ok := value.(string); ok {
				if t, err := time.Parse(DateLayout, strings.TrimSpace(s)); err == nil {
					out[field.Key] = t.Format(DateLayout)
				}
			}
		default:
			if s, ok := value.(string); ok {
				out[field.Key] = strings.TrimSpace(s)
			} else {
				out[field.Key] = value
			}
		}
	}

	return out
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

func (f Field) check(value any) string {
	switch f.Type {
	case FieldText, FieldTextarea, FieldMarkdown, FieldFile:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be text", f.label())
		}
		return f.checkString(strings.TrimSpace(s))
	case FieldNumber:
		n, ok := toNumber(value)
		if !ok {
			return fmt.Sprintf("%s must be a number", f.label())
		}
		return f.checkNumber(n)
	case FieldDate:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be a date", f.label())
		}
		if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
			return fmt.Sprintf("%s must be a date in %s form", f.label(), DateLayout)
		}
	case FieldSelect:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be one of the listed options", f.label())
		}
		for _, opt := range f.Options {
			if s == opt {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of the listed options", f.label())
	}
	return ""
}

func (f Field) checkString(s string) string {
	if f.Rules == nil {
		return ""
	}
	if f.Rules.MinLength > 0 && len(s) < f.Rules.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", f.label(), f.Rules.MinLength)
	}
	if f.Rules.MaxLength > 0 && len(s) > f.Rules.MaxLength {
		return fmt.Sprintf("%s must be no more than %d characters", f.label(), f.Rules.MaxLength)
	}
	if f.Rules.Pattern != "" {
		if re, err := regexp.Compile(f.Rules.Pattern); err == nil && !re.MatchString(s) {
			return fmt.Sprintf("%s format is invalid", f.label())
		}
	}
	return ""
}

func (f Field) checkNumber(n float64) string {
	if f.Rules == nil {
		return ""
	}
	if f.Rules.Min != nil && n < *f.Rules.Min {
		return fmt.Sprintf("%s must be at least %v", f.label(), *f.Rules.Min)
	}
	if f.Rules.Max != nil && n > *f.Rules.Max {
		return fmt.Sprintf("%s must be no more than %v", f.label(), *f.Rules.Max)
	}
	return ""
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
