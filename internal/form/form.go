// Package form holds the foliation settings the user edits before submitting.
package form

import (
	"fmt"
	"strings"
)

// Kind is the input kind of a field
type Kind int

const (
	KindNumber Kind = iota
	KindSelect
)

// Field names understood by the foliation service
const (
	FieldStartNumber = "start_number"
	FieldStartPage   = "start_page"
	FieldEndPage     = "end_page"
	FieldFontSize    = "font_size"
	FieldOffset      = "offset"
	FieldCorner      = "corner"
	FieldOrientation = "orientation"
)

// Field is one named setting
type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Value   string
	Options []string // KindSelect only
	Decimal bool     // KindNumber accepts a fractional part
	Preview bool     // sent with preview requests
}

// Value is a single name/value pair of a Snapshot
type Value struct {
	Name  string
	Value string
}

// Snapshot is a read-only, ordered copy of the fields taken at request time
type Snapshot struct {
	values  []Value
	preview map[string]bool
}

// Values returns the pairs in form order
func (s Snapshot) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// Get returns the value of name, or "" when absent
func (s Snapshot) Get(name string) string {
	for _, v := range s.values {
		if v.Name == name {
			return v.Value
		}
	}
	return ""
}

// PreviewValues returns the fields tagged for preview with suffix appended to every name
func (s Snapshot) PreviewValues(suffix string) []Value {
	out := make([]Value, 0, len(s.values))
	for _, v := range s.values {
		if s.preview[v.Name] {
			out = append(out, Value{Name: v.Name + suffix, Value: v.Value})
		}
	}
	return out
}

// Configuration is the ordered set of fields with their current values
type Configuration struct {
	fields   []Field
	defaults map[string]string
}

// New builds the standard field set. overrides replaces built-in defaults by field name.
func New(overrides map[string]string) *Configuration {
	fields := []Field{
		{Name: FieldStartNumber, Label: "Start number", Kind: KindNumber, Value: "1"},
		{Name: FieldStartPage, Label: "From page", Kind: KindNumber, Value: "1"},
		{Name: FieldEndPage, Label: "To page", Kind: KindNumber, Value: ""},
		{Name: FieldFontSize, Label: "Font size", Kind: KindNumber, Value: "16"},
		{Name: FieldOffset, Label: "Margin (cm)", Kind: KindNumber, Value: "1.0", Decimal: true},
		{Name: FieldCorner, Label: "Corner", Kind: KindSelect, Value: "bottom-right",
			Options: []string{"bottom-right", "bottom-left", "top-right", "top-left"}},
		{Name: FieldOrientation, Label: "Orientation", Kind: KindSelect, Value: "horizontal",
			Options: []string{"horizontal", "vertical"}},
	}

	defaults := make(map[string]string, len(fields))
	for i := range fields {
		fields[i].Preview = true
		if v, ok := overrides[fields[i].Name]; ok && fields[i].accepts(v) {
			fields[i].Value = v
		}
		defaults[fields[i].Name] = fields[i].Value
	}

	return &Configuration{fields: fields, defaults: defaults}
}

// Fields returns a copy of the fields in order
func (c *Configuration) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Get returns the current value of name
func (c *Configuration) Get(name string) string {
	if f := c.find(name); f != nil {
		return f.Value
	}
	return ""
}

// Set assigns value to the named field
func (c *Configuration) Set(name, value string) error {
	f := c.find(name)
	if f == nil {
		return fmt.Errorf("unknown field %q", name)
	}
	if !f.accepts(value) {
		return fmt.Errorf("invalid value %q for %s", value, name)
	}
	f.Value = value
	return nil
}

// Cycle moves a select field to the next (delta > 0) or previous option
func (c *Configuration) Cycle(name string, delta int) error {
	f := c.find(name)
	if f == nil || f.Kind != KindSelect {
		return fmt.Errorf("%q is not a select field", name)
	}
	idx := 0
	for i, opt := range f.Options {
		if opt == f.Value {
			idx = i
			break
		}
	}
	n := len(f.Options)
	f.Value = f.Options[((idx+delta)%n+n)%n]
	return nil
}

// Reset restores every field to its default
func (c *Configuration) Reset() {
	for i := range c.fields {
		c.fields[i].Value = c.defaults[c.fields[i].Name]
	}
}

// Snapshot copies the current values
func (c *Configuration) Snapshot() Snapshot {
	s := Snapshot{
		values:  make([]Value, len(c.fields)),
		preview: make(map[string]bool, len(c.fields)),
	}
	for i, f := range c.fields {
		s.values[i] = Value{Name: f.Name, Value: f.Value}
		s.preview[f.Name] = f.Preview
	}
	return s
}

func (c *Configuration) find(name string) *Field {
	for i := range c.fields {
		if c.fields[i].Name == name {
			return &c.fields[i]
		}
	}
	return nil
}

// accepts mirrors what a number input or select element lets through.
// Partial numbers ("", "1.") are accepted so the user can keep typing.
func (f *Field) accepts(v string) bool {
	switch f.Kind {
	case KindSelect:
		for _, opt := range f.Options {
			if opt == v {
				return true
			}
		}
		return false
	default:
		dot := false
		for i, r := range v {
			switch {
			case r >= '0' && r <= '9':
			case r == '-' && i == 0:
			case r == '.' && f.Decimal && !dot:
				dot = true
			default:
				return false
			}
		}
		return !strings.HasPrefix(v, "-") || f.Name == FieldOffset
	}
}
