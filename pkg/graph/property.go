package graph

import "fmt"

// LabelID, EdgeTypeID and PropertyID are interned names: the storage
// engine never compares or stores raw strings in a hot path, only the
// small integers a Dictionary hands out.
type LabelID uint32
type EdgeTypeID uint32
type PropertyID uint32

// Dictionary interns strings to small integers and back. Vertex
// labels, edge types, and property keys each get their own
// Dictionary so that a label and a property key that happen to share
// a name never collide.
type Dictionary struct {
	byName map[string]uint32
	byID   []string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{byName: make(map[string]uint32)}
}

// Intern returns the id for name, allocating a new one if name has
// not been seen before.
func (d *Dictionary) Intern(name string) uint32 {
	if id, ok := d.byName[name]; ok {
		return id
	}
	id := uint32(len(d.byID))
	d.byID = append(d.byID, name)
	d.byName[name] = id
	return id
}

// Lookup returns the id already assigned to name, if any.
func (d *Dictionary) Lookup(name string) (uint32, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Name returns the string behind id. Panics if id was never interned
// by this dictionary — a programmer error, not a recoverable one.
func (d *Dictionary) Name(id uint32) string {
	if int(id) >= len(d.byID) {
		panic(fmt.Sprintf("graph: dictionary has no entry for id %d", id))
	}
	return d.byID[id]
}

// PropertyValue is the closed set of value shapes a vertex or edge
// property can hold: bool, int64, float64, string, []byte, or a
// list/map built from these. The zero value holds no value.
type PropertyValue struct {
	v any
}

func Bool(b bool) PropertyValue                { return PropertyValue{b} }
func Int(n int64) PropertyValue                { return PropertyValue{n} }
func Float(f float64) PropertyValue            { return PropertyValue{f} }
func String(s string) PropertyValue            { return PropertyValue{s} }
func Bytes(b []byte) PropertyValue             { return PropertyValue{b} }
func List(vs []PropertyValue) PropertyValue    { return PropertyValue{vs} }
func Map(m map[string]PropertyValue) PropertyValue { return PropertyValue{m} }

// IsNil reports whether v holds no value.
func (v PropertyValue) IsNil() bool { return v.v == nil }

// AsBool returns the wrapped bool and whether v actually holds one.
func (v PropertyValue) AsBool() (bool, bool) { b, ok := v.v.(bool); return b, ok }

// AsInt returns the wrapped int64 and whether v actually holds one.
func (v PropertyValue) AsInt() (int64, bool) { n, ok := v.v.(int64); return n, ok }

// AsFloat returns the wrapped float64 and whether v actually holds one.
func (v PropertyValue) AsFloat() (float64, bool) { f, ok := v.v.(float64); return f, ok }

// AsString returns the wrapped string and whether v actually holds one.
func (v PropertyValue) AsString() (string, bool) { s, ok := v.v.(string); return s, ok }

// AsBytes returns the wrapped []byte and whether v actually holds one.
func (v PropertyValue) AsBytes() ([]byte, bool) { b, ok := v.v.([]byte); return b, ok }

// AsList returns the wrapped list and whether v actually holds one.
func (v PropertyValue) AsList() ([]PropertyValue, bool) { l, ok := v.v.([]PropertyValue); return l, ok }

// AsMap returns the wrapped map and whether v actually holds one.
func (v PropertyValue) AsMap() (map[string]PropertyValue, bool) {
	m, ok := v.v.(map[string]PropertyValue)
	return m, ok
}

// Equal compares two property values for equality. Lists and maps
// compare element-wise; comparing two values that wrap a []byte uses
// byte-slice equality rather than Go's uncomparable-type panic.
func (v PropertyValue) Equal(o PropertyValue) bool {
	if v.v == nil || o.v == nil {
		return v.v == nil && o.v == nil
	}
	switch a := v.v.(type) {
	case []byte:
		b, ok := o.v.([]byte)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case []PropertyValue:
		b, ok := o.v.([]PropertyValue)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case map[string]PropertyValue:
		b, ok := o.v.(map[string]PropertyValue)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return v.v == o.v
	}
}
