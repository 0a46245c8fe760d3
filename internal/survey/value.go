package survey

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Shape tags which variant a Value holds.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeText
	ShapeSet
	ShapeGroup
)

// Value is one answer. Single-choice, text, date and select answers are
// text; multi-choice answers are sets; composite groups map field names to
// text. The zero Value is an unset answer.
type Value struct {
	shape Shape
	text  string
	items []string
	group map[string]string
}

func Text(s string) Value { return Value{shape: ShapeText, text: s} }

// Set builds a multi-choice value. Duplicates are dropped; entry order is
// kept for display.
func Set(items ...string) Value {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return Value{shape: ShapeSet, items: out}
}

func Group(fields map[string]string) Value {
	g := make(map[string]string, len(fields))
	maps.Copy(g, fields)
	return Value{shape: ShapeGroup, group: g}
}

func (v Value) Shape() Shape { return v.shape }

// Text returns the text of a text value and "" for any other shape.
func (v Value) Text() string { return v.text }

// Items returns a copy of the set entries in entry order.
func (v Value) Items() []string { return slices.Clone(v.items) }

func (v Value) Contains(item string) bool { return slices.Contains(v.items, item) }

// Field returns one field of a group value.
func (v Value) Field(name string) string { return v.group[name] }

// Fields returns a copy of a group value's fields.
func (v Value) Fields() map[string]string { return maps.Clone(v.group) }

// IsEmpty reports whether v counts as unanswered: empty text, empty set, or
// a group none of whose fields is filled.
func (v Value) IsEmpty() bool {
	switch v.shape {
	case ShapeText:
		return v.text == ""
	case ShapeSet:
		return len(v.items) == 0
	case ShapeGroup:
		for _, f := range v.group {
			if f != "" {
				return false
			}
		}
		return true
	}
	return true
}

// Equal compares two values. Sets compare as sets; entry order is ignored.
// Any two empty values are equal, so an unset answer equals an empty one.
func (v Value) Equal(o Value) bool {
	if v.IsEmpty() && o.IsEmpty() {
		return true
	}
	if v.shape != o.shape {
		return false
	}
	switch v.shape {
	case ShapeText:
		return v.text == o.text
	case ShapeSet:
		if len(v.items) != len(o.items) {
			return false
		}
		for _, it := range v.items {
			if !slices.Contains(o.items, it) {
				return false
			}
		}
		return true
	case ShapeGroup:
		for k, f := range v.group {
			if o.group[k] != f {
				return false
			}
		}
		for k, f := range o.group {
			if v.group[k] != f {
				return false
			}
		}
		return true
	}
	return true
}

// Serialize renders v as a single stored cell: sets join with ", ".
func (v Value) Serialize() string {
	switch v.shape {
	case ShapeText:
		return v.text
	case ShapeSet:
		return strings.Join(v.items, ", ")
	case ShapeGroup:
		data, _ := json.Marshal(v.group)
		return string(data)
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.shape {
	case ShapeText:
		return json.Marshal(v.text)
	case ShapeSet:
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	case ShapeGroup:
		return json.Marshal(v.group)
	}
	return []byte("null"), nil
}

func (v Value) String() string { return v.Serialize() }

// ValueFor converts a loosely typed answer (as decoded from JSON or YAML)
// into the Value shape q expects.
func ValueFor(q Question, raw any) (Value, error) {
	switch q.Kind {
	case KindMultiChoice:
		switch r := raw.(type) {
		case nil:
			return Set(), nil
		case string:
			if strings.TrimSpace(r) == "" {
				return Set(), nil
			}
			return Set(r), nil
		case []string:
			return Set(r...), nil
		case []any:
			items := make([]string, 0, len(r))
			for _, it := range r {
				items = append(items, scalar(it))
			}
			return Set(items...), nil
		}
	case KindCompositeGroup:
		switch r := raw.(type) {
		case nil:
			return Group(nil), nil
		case map[string]string:
			return Group(r), nil
		case map[string]any:
			g := make(map[string]string, len(r))
			for k, f := range r {
				if _, ok := q.Field(k); !ok {
					return Value{}, fmt.Errorf("question %s has no field %q", q.ID, k)
				}
				g[k] = scalar(f)
			}
			return Group(g), nil
		}
	default:
		switch r := raw.(type) {
		case nil:
			return Text(""), nil
		case string:
			return Text(r), nil
		case int, int64, float64, bool:
			return Text(scalar(r)), nil
		}
	}
	return Value{}, fmt.Errorf("question %s (%s): unsupported answer type %T", q.ID, q.Kind, raw)
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Answers maps answer-set keys to values.
type Answers map[string]Value

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = Value{shape: v.shape, text: v.text, items: slices.Clone(v.items), group: maps.Clone(v.group)}
	}
	return out
}
