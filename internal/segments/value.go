package segments

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags the runtime shape of a criterion value.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindStringList
	KindNumberList
)

var kindNames = map[ValueKind]string{
	KindAbsent:     "absent",
	KindString:     "string",
	KindNumber:     "number",
	KindBool:       "bool",
	KindStringList: "string_list",
	KindNumberList: "number_list",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is the tagged variant carried by a FilterCriterion. On the wire it is
// a plain JSON scalar or array (or omitted entirely for the null-check
// operators); in memory the kind is explicit so operator/value mismatches are
// caught at construction instead of deep inside the evaluator.
type Value struct {
	kind  ValueKind
	str   string
	num   float64
	b     bool
	strs  []string
	nums  []float64
}

// AbsentValue is the zero Value, used with is_null / is_not_null.
func AbsentValue() Value { return Value{} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringListValue wraps a list of strings.
func StringListValue(ss ...string) Value {
	return Value{kind: KindStringList, strs: append([]string(nil), ss...)}
}

// NumberListValue wraps a list of numbers.
func NumberListValue(ns ...float64) Value {
	return Value{kind: KindNumberList, nums: append([]float64(nil), ns...)}
}

// Kind returns the tag of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value carries nothing.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsString returns the string payload. ok is false for any other kind.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload. ok is false for any other kind.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload. ok is false for any other kind.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsStringList returns the string-list payload. ok is false for any other kind.
func (v Value) AsStringList() ([]string, bool) { return v.strs, v.kind == KindStringList }

// AsNumberList returns the number-list payload. ok is false for any other kind.
func (v Value) AsNumberList() ([]float64, bool) { return v.nums, v.kind == KindNumberList }

// IsList reports whether the value is one of the list kinds.
func (v Value) IsList() bool { return v.kind == KindStringList || v.kind == KindNumberList }

// Equal reports strict equality: same kind, same payload. Strings compare
// case-sensitively; lists compare element-wise in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindStringList:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case KindNumberList:
		if len(v.nums) != len(o.nums) {
			return false
		}
		for i := range v.nums {
			if v.nums[i] != o.nums[i] {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON writes the wire shape: null for absent, otherwise the plain
// scalar or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindStringList:
		if v.strs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.strs)
	case KindNumberList:
		if v.nums == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.nums)
	}
	return nil, fmt.Errorf("marshal value: unknown kind %v", v.kind)
}

// UnmarshalJSON derives the kind from the JSON shape. Heterogeneous arrays
// and objects are rejected; persisted criteria never contain them.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = AbsentValue()
	case string:
		*v = StringValue(t)
	case float64:
		*v = NumberValue(t)
	case bool:
		*v = BoolValue(t)
	case []any:
		if len(t) == 0 {
			*v = StringListValue()
			return nil
		}
		switch t[0].(type) {
		case string:
			ss := make([]string, 0, len(t))
			for _, e := range t {
				s, ok := e.(string)
				if !ok {
					return fmt.Errorf("unmarshal value: mixed-type array")
				}
				ss = append(ss, s)
			}
			*v = StringListValue(ss...)
		case float64:
			ns := make([]float64, 0, len(t))
			for _, e := range t {
				n, ok := e.(float64)
				if !ok {
					return fmt.Errorf("unmarshal value: mixed-type array")
				}
				ns = append(ns, n)
			}
			*v = NumberListValue(ns...)
		default:
			return fmt.Errorf("unmarshal value: unsupported array element %T", t[0])
		}
	default:
		return fmt.Errorf("unmarshal value: unsupported type %T", raw)
	}
	return nil
}
