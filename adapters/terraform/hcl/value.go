// Package hcl - Literal cty value conversion
// Unknown values are never guessed; they are reported as not known.
package hcl

import (
	"github.com/zclconf/go-cty/cty"
)

// Kind indicates the type of a converted value
type Kind int

const (
	KindUnknown Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a cty value converted to plain Go data
type Value struct {
	// Data is string, float64, bool, []interface{} or map[string]interface{}
	Data interface{}
	Kind Kind

	// Reason explains why the value is unknown
	Reason string
}

// Known reports whether the value can be used in a resource state
func (v Value) Known() bool {
	return v.Kind != KindUnknown && v.Kind != KindNull
}

// Convert turns a cty value into plain Go data. Numbers become float64 so
// the result looks like decoded JSON.
func Convert(val cty.Value) Value {
	if !val.IsKnown() {
		return Value{Kind: KindUnknown, Reason: "value not known until apply"}
	}
	if val.IsNull() {
		return Value{Kind: KindNull}
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return Value{Kind: KindString, Data: val.AsString()}
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return Value{Kind: KindNumber, Data: f}
	case ty == cty.Bool:
		return Value{Kind: KindBool, Data: val.True()}
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		list, ok := convertList(val)
		if !ok {
			return Value{Kind: KindUnknown, Reason: "collection has unknown elements"}
		}
		return Value{Kind: KindList, Data: list}
	case ty.IsMapType() || ty.IsObjectType():
		m, ok := convertMap(val)
		if !ok {
			return Value{Kind: KindUnknown, Reason: "collection has unknown elements"}
		}
		return Value{Kind: KindMap, Data: m}
	default:
		return Value{Kind: KindUnknown, Reason: "unhandled type " + ty.FriendlyName()}
	}
}

func convertList(val cty.Value) ([]interface{}, bool) {
	if !val.CanIterateElements() {
		return nil, false
	}

	out := make([]interface{}, 0, val.LengthInt())
	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		v := Convert(elem)
		if v.Kind == KindUnknown {
			return nil, false
		}
		out = append(out, v.Data)
	}
	return out, true
}

func convertMap(val cty.Value) (map[string]interface{}, bool) {
	if !val.CanIterateElements() {
		return nil, false
	}

	out := make(map[string]interface{})
	it := val.ElementIterator()
	for it.Next() {
		k, elem := it.Element()
		v := Convert(elem)
		if v.Kind == KindUnknown {
			return nil, false
		}
		if v.Kind == KindNull {
			continue
		}
		out[k.AsString()] = v.Data
	}
	return out, true
}

// AsString returns the value as a string, or empty if not a string
func (v Value) AsString() string {
	s, _ := v.Data.(string)
	return s
}

// AsNumber returns the value as a number
func (v Value) AsNumber() (float64, bool) {
	f, ok := v.Data.(float64)
	return f, ok
}

// AsBool returns the value as a bool
func (v Value) AsBool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok
}

