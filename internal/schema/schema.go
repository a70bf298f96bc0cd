// Package schema resolves a parsed cloud.js document into a canonical
// description of the point record layout and spatial calibration. The
// format is under-specified and has drifted across converter versions:
// field names, attribute representations and defaults all vary, so every
// lookup here carries an explicit fallback chain.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"potree-preview/internal/jsondoc"
	"potree-preview/internal/mathutil"
)

var (
	// ErrMissingAttributes means the document has no attribute list under
	// any of the known field names.
	ErrMissingAttributes = errors.New("schema: missing point attribute schema")
	// ErrBadAttributes means the attribute list exists but has a shape
	// this resolver does not understand.
	ErrBadAttributes = errors.New("schema: unsupported point attribute schema")
)

// Schema is the resolved, immutable description of a point cloud. Once
// built it is read-only and may be shared across concurrent decodes.
type Schema struct {
	PointCount        int64
	BBoxMin           mathutil.Vec3
	BBoxMax           mathutil.Vec3
	Scale             mathutil.Vec3
	Offset            mathutil.Vec3
	HierarchyStepSize int
	Attributes        []Attribute
}

// RecordStride is the total byte length of one encoded point record.
func (s *Schema) RecordStride() int {
	stride := 0
	for _, a := range s.Attributes {
		stride += a.Size
	}
	return stride
}

// HasKind reports whether any attribute of the given kind is declared.
func (s *Schema) HasKind(kind AttributeKind) bool {
	for _, a := range s.Attributes {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Resolve builds a Schema from a parsed cloud.js document. Missing point
// counts, boxes, scales and offsets fall back to defaults; a missing or
// malformed attribute list is fatal.
func Resolve(doc jsondoc.Doc) (*Schema, error) {
	s := &Schema{HierarchyStepSize: 5}

	if n, ok := doc.Int64("points", "pointCount"); ok {
		s.PointCount = n
	}
	if h, ok := doc.Int("hierarchyStepSize"); ok {
		s.HierarchyStepSize = h
	}

	// boundingBox preferred, tightBoundingBox as the legacy fallback. A
	// degenerate zero box is tolerated; downstream must cope.
	if min, max, ok := resolveBBox(doc, "boundingBox"); ok {
		s.BBoxMin, s.BBoxMax = min, max
	} else if min, max, ok := resolveBBox(doc, "tightBoundingBox"); ok {
		s.BBoxMin, s.BBoxMax = min, max
	}

	if scale, ok := doc.ScalarOrVec3("scale"); ok {
		s.Scale = scale
	} else {
		s.Scale = mathutil.Splat(0.001)
	}

	// Absent offset means quantized coordinates are relative to the box
	// minimum.
	if offset, ok := doc.ScalarOrVec3("offset"); ok {
		s.Offset = offset
	} else {
		s.Offset = s.BBoxMin
	}

	attrs, err := resolveAttributes(doc)
	if err != nil {
		return nil, err
	}
	s.Attributes = attrs

	if s.RecordStride() <= 0 {
		return nil, fmt.Errorf("%w: zero record stride", ErrBadAttributes)
	}
	return s, nil
}

// resolveBBox reads a bounding box object. Converter output spells the
// corners either as min/max vectors or as lx..uz component fields.
func resolveBBox(doc jsondoc.Doc, field string) (min, max mathutil.Vec3, ok bool) {
	box, found := doc.Object(field)
	if !found {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	if mn, okMin := box.Vec3("min"); okMin {
		if mx, okMax := box.Vec3("max"); okMax {
			return mn, mx, true
		}
	}
	lx, ok1 := box.Float("lx")
	ly, ok2 := box.Float("ly")
	lz, ok3 := box.Float("lz")
	ux, ok4 := box.Float("ux")
	uy, ok5 := box.Float("uy")
	uz, ok6 := box.Float("uz")
	if ok1 && ok2 && ok3 && ok4 && ok5 && ok6 {
		return mathutil.Vec3{lx, ly, lz}, mathutil.Vec3{ux, uy, uz}, true
	}
	return mathutil.Vec3{}, mathutil.Vec3{}, false
}

func resolveAttributes(doc jsondoc.Doc) ([]Attribute, error) {
	v, ok := doc.Field("pointAttributes", "attributes", "schema")
	if !ok {
		return nil, ErrMissingAttributes
	}
	switch t := v.(type) {
	case string:
		return ExpandAlias(t), nil
	case []any:
		attrs := make([]Attribute, 0, len(t))
		for i, entry := range t {
			obj, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T", ErrBadAttributes, i, entry)
			}
			attrs = append(attrs, parseAttribute(jsondoc.Doc(obj)))
		}
		return attrs, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrBadAttributes, v)
	}
}

// parseAttribute reads one descriptor entry. Absent fields fill from the
// per-kind default table; an absent or unrecognized type token is inferred
// from the byte layout.
func parseAttribute(entry jsondoc.Doc) Attribute {
	name, _ := entry.String("name")
	attr := Attribute{Kind: MatchKind(name)}

	defSize, defElements := defaultLayout(attr.Kind)
	if size, ok := entry.Int("size"); ok {
		attr.Size = size
	} else {
		attr.Size = defSize
	}
	if elements, ok := entry.Int("elements"); ok {
		attr.Elements = elements
	} else {
		attr.Elements = defElements
	}

	if token, ok := entry.String("type"); ok {
		if typ, matched := MatchType(token); matched {
			attr.Type = typ
			return attr
		}
	}
	if attr.Size == 4*attr.Elements {
		attr.Type = TypeFloat32
	} else {
		attr.Type = TypeUInt32
	}
	return attr
}

// ExpandAlias expands a legacy string-form schema into its implicit
// attribute list. Every alias starts with a position attribute; "RGB"
// anywhere in the alias appends a color triple, "LAS" appends intensity
// and classification.
func ExpandAlias(alias string) []Attribute {
	upper := strings.ToUpper(alias)
	attrs := []Attribute{
		{Kind: KindPosition, Type: TypeFloat32, Size: 12, Elements: 3},
	}
	if strings.Contains(upper, "RGB") {
		attrs = append(attrs, Attribute{Kind: KindRGB, Type: TypeUInt8, Size: 3, Elements: 3})
	}
	if strings.Contains(upper, "LAS") {
		attrs = append(attrs,
			Attribute{Kind: KindIntensity, Type: TypeUInt16, Size: 2, Elements: 1},
			Attribute{Kind: KindClassification, Type: TypeUInt8, Size: 1, Elements: 1},
		)
	}
	return attrs
}
