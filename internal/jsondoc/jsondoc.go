// Package jsondoc wraps a generic parsed JSON object with typed accessors.
// The cloud.js format has accumulated several historical field spellings,
// so every getter takes a fallback chain of names; the first present wins.
package jsondoc

import (
	"encoding/json"
	"fmt"

	"potree-preview/internal/mathutil"
)

// Doc is a generic JSON object.
type Doc map[string]any

// Parse unmarshals raw JSON into a Doc.
func Parse(data []byte) (Doc, error) {
	var d Doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("jsondoc: parse: %w", err)
	}
	return d, nil
}

// Field returns the first present field among names.
func (d Doc) Field(names ...string) (any, bool) {
	for _, n := range names {
		if v, ok := d[n]; ok {
			return v, true
		}
	}
	return nil, false
}

// Object returns the first present field that is a JSON object.
func (d Doc) Object(names ...string) (Doc, bool) {
	v, ok := d.Field(names...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Doc(m), true
}

// String returns the first present field that is a string.
func (d Doc) String(names ...string) (string, bool) {
	v, ok := d.Field(names...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the first present numeric field.
func (d Doc) Float(names ...string) (float64, bool) {
	v, ok := d.Field(names...)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// Int returns the first present numeric field truncated to int.
func (d Doc) Int(names ...string) (int, bool) {
	f, ok := d.Float(names...)
	return int(f), ok
}

// Int64 returns the first present numeric field truncated to int64.
func (d Doc) Int64(names ...string) (int64, bool) {
	f, ok := d.Float(names...)
	return int64(f), ok
}

// Vec3 returns the first present field readable as a 3-vector.
func (d Doc) Vec3(names ...string) (mathutil.Vec3, bool) {
	v, ok := d.Field(names...)
	if !ok {
		return mathutil.Vec3{}, false
	}
	return AsVec3(v)
}

// ScalarOrVec3 returns the first present field readable as either a
// single scalar (expanded to a uniform vector) or a 3-vector.
func (d Doc) ScalarOrVec3(names ...string) (mathutil.Vec3, bool) {
	v, ok := d.Field(names...)
	if !ok {
		return mathutil.Vec3{}, false
	}
	if s, ok := asFloat(v); ok {
		return mathutil.Splat(s), true
	}
	return AsVec3(v)
}

// AsVec3 reads a value as a 3-vector. Accepts a JSON array with at least
// three numeric elements, or an object with x/y/z fields.
func AsVec3(v any) (mathutil.Vec3, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) < 3 {
			return mathutil.Vec3{}, false
		}
		var out mathutil.Vec3
		for i := 0; i < 3; i++ {
			f, ok := asFloat(t[i])
			if !ok {
				return mathutil.Vec3{}, false
			}
			out[i] = f
		}
		return out, true
	case map[string]any:
		obj := Doc(t)
		x, okX := obj.Float("x")
		y, okY := obj.Float("y")
		z, okZ := obj.Float("z")
		if !okX || !okY || !okZ {
			return mathutil.Vec3{}, false
		}
		return mathutil.Vec3{x, y, z}, true
	}
	return mathutil.Vec3{}, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
