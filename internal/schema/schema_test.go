package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potree-preview/internal/jsondoc"
	"potree-preview/internal/mathutil"
)

func mustDoc(t *testing.T, raw string) jsondoc.Doc {
	t.Helper()
	doc, err := jsondoc.Parse([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	sch, err := Resolve(mustDoc(t, `{"pointAttributes": "POSITION_CARTESIAN"}`))
	require.NoError(t, err)

	assert.Equal(t, int64(0), sch.PointCount)
	assert.Equal(t, 5, sch.HierarchyStepSize)
	assert.Equal(t, mathutil.Vec3{0.001, 0.001, 0.001}, sch.Scale)
	// Absent offset falls back to the (degenerate) box minimum.
	assert.Equal(t, mathutil.Vec3{}, sch.Offset)
	assert.Equal(t, mathutil.Vec3{}, sch.BBoxMin)
	assert.Equal(t, 12, sch.RecordStride())
}

func TestResolve_PointCountFallbacks(t *testing.T) {
	t.Parallel()

	t.Run("points wins over pointCount", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"points": 42, "pointCount": 7, "pointAttributes": "POSITION"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(42), sch.PointCount)
	})

	t.Run("pointCount alone", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointCount": 7, "pointAttributes": "POSITION"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(7), sch.PointCount)
	})
}

func TestResolve_Scale(t *testing.T) {
	t.Parallel()

	t.Run("scalar expands to uniform vector", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"scale": 0.01, "pointAttributes": "POSITION"}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{0.01, 0.01, 0.01}, sch.Scale)
	})

	t.Run("array form", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"scale": [0.1, 0.2, 0.3], "pointAttributes": "POSITION"}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{0.1, 0.2, 0.3}, sch.Scale)
	})

	t.Run("object form", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"scale": {"x": 1, "y": 2, "z": 3}, "pointAttributes": "POSITION"}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{1, 2, 3}, sch.Scale)
	})
}

func TestResolve_BoundingBox(t *testing.T) {
	t.Parallel()

	t.Run("boundingBox min/max", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{
			"boundingBox": {"min": [1, 2, 3], "max": [4, 5, 6]},
			"tightBoundingBox": {"min": [9, 9, 9], "max": [9, 9, 9]},
			"pointAttributes": "POSITION"
		}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{1, 2, 3}, sch.BBoxMin)
		assert.Equal(t, mathutil.Vec3{4, 5, 6}, sch.BBoxMax)
	})

	t.Run("tightBoundingBox fallback", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{
			"tightBoundingBox": {"min": [1, 1, 1], "max": [2, 2, 2]},
			"pointAttributes": "POSITION"
		}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{1, 1, 1}, sch.BBoxMin)
		assert.Equal(t, mathutil.Vec3{2, 2, 2}, sch.BBoxMax)
	})

	t.Run("component form", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{
			"boundingBox": {"lx": 1, "ly": 2, "lz": 3, "ux": 4, "uy": 5, "uz": 6},
			"pointAttributes": "POSITION"
		}`))
		require.NoError(t, err)
		assert.Equal(t, mathutil.Vec3{1, 2, 3}, sch.BBoxMin)
		assert.Equal(t, mathutil.Vec3{4, 5, 6}, sch.BBoxMax)
	})
}

func TestResolve_OffsetDefaultsToBBoxMin(t *testing.T) {
	t.Parallel()

	sch, err := Resolve(mustDoc(t, `{
		"tightBoundingBox": {"min": [100, 200, 0], "max": [110, 210, 10]},
		"pointAttributes": "POSITION"
	}`))
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{100, 200, 0}, sch.Offset)

	explicit, err := Resolve(mustDoc(t, `{
		"tightBoundingBox": {"min": [100, 200, 0], "max": [110, 210, 10]},
		"offset": [1, 2, 3],
		"pointAttributes": "POSITION"
	}`))
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, explicit.Offset)
}

func TestResolve_AttributeFieldFallbacks(t *testing.T) {
	t.Parallel()

	for _, field := range []string{"pointAttributes", "attributes", "schema"} {
		t.Run(field, func(t *testing.T) {
			sch, err := Resolve(mustDoc(t, `{"`+field+`": "POSITION"}`))
			require.NoError(t, err)
			assert.Len(t, sch.Attributes, 1)
		})
	}
}

func TestResolve_AliasExpansion(t *testing.T) {
	t.Parallel()

	t.Run("LASRGB", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": "LASRGB"}`))
		require.NoError(t, err)

		want := []Attribute{
			{Kind: KindPosition, Type: TypeFloat32, Size: 12, Elements: 3},
			{Kind: KindRGB, Type: TypeUInt8, Size: 3, Elements: 3},
			{Kind: KindIntensity, Type: TypeUInt16, Size: 2, Elements: 1},
			{Kind: KindClassification, Type: TypeUInt8, Size: 1, Elements: 1},
		}
		if diff := cmp.Diff(want, sch.Attributes); diff != "" {
			t.Errorf("attributes mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 18, sch.RecordStride())
	})

	t.Run("case-insensitive", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": "lasrgb"}`))
		require.NoError(t, err)
		assert.Len(t, sch.Attributes, 4)
	})

	t.Run("plain position alias", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": "POTREE"}`))
		require.NoError(t, err)
		assert.Len(t, sch.Attributes, 1)
		assert.Equal(t, KindPosition, sch.Attributes[0].Kind)
	})
}

func TestResolve_EntryList(t *testing.T) {
	t.Parallel()

	sch, err := Resolve(mustDoc(t, `{"pointAttributes": [
		{"name": "POSITION_CARTESIAN", "size": 12, "elements": 3, "type": "int32"},
		{"name": "COLOR_PACKED"},
		{"name": "INTENSITY", "type": "uint16"},
		{"name": "SPACER", "size": 7, "elements": 1}
	]}`))
	require.NoError(t, err)

	want := []Attribute{
		{Kind: KindPosition, Type: TypeInt32, Size: 12, Elements: 3},
		{Kind: KindPackedColor, Type: TypeUInt32, Size: 4, Elements: 4},
		{Kind: KindIntensity, Type: TypeUInt16, Size: 2, Elements: 1},
		{Kind: KindUnknown, Type: TypeUInt32, Size: 7, Elements: 1},
	}
	if diff := cmp.Diff(want, sch.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 12+4+2+7, sch.RecordStride())
}

func TestResolve_TypeInference(t *testing.T) {
	t.Parallel()

	// size == 4 * elements infers float32, anything else falls back to
	// uint32.
	sch, err := Resolve(mustDoc(t, `{"pointAttributes": [
		{"name": "NORMAL", "size": 12, "elements": 3},
		{"name": "GPS_TIME", "size": 8, "elements": 1}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeFloat32, sch.Attributes[0].Type)
	assert.Equal(t, TypeUInt32, sch.Attributes[1].Type)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing attribute schema", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"points": 10}`))
		assert.Nil(t, sch)
		assert.ErrorIs(t, err, ErrMissingAttributes)
	})

	t.Run("numeric attribute schema", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": 12}`))
		assert.Nil(t, sch)
		assert.ErrorIs(t, err, ErrBadAttributes)
	})

	t.Run("non-object entry", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": [3]}`))
		assert.Nil(t, sch)
		assert.ErrorIs(t, err, ErrBadAttributes)
	})

	t.Run("empty list has zero stride", func(t *testing.T) {
		sch, err := Resolve(mustDoc(t, `{"pointAttributes": []}`))
		assert.Nil(t, sch)
		assert.ErrorIs(t, err, ErrBadAttributes)
	})

	t.Run("errors are SchemaError kinds", func(t *testing.T) {
		_, err := Resolve(mustDoc(t, `{}`))
		assert.True(t, errors.Is(err, ErrMissingAttributes))
	})
}

func TestRecordStride_SumsSizes(t *testing.T) {
	t.Parallel()

	sch := &Schema{Attributes: []Attribute{
		{Kind: KindPosition, Size: 12},
		{Kind: KindPackedColor, Size: 4},
		{Kind: KindUnknown, Size: 5},
	}}
	assert.Equal(t, 21, sch.RecordStride())
}
