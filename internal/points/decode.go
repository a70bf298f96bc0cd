// Package points decodes flat binary blocks of fixed-stride point records
// into columnar output. Records carry heterogeneous encodings per
// attribute: positions are either raw little-endian float32 triples or
// quantized int32 triples needing the schema's affine transform, colors are
// either 3-byte RGB or 4-byte packed RGBA.
package points

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"potree-preview/internal/mathutil"
	"potree-preview/internal/schema"
)

var (
	// ErrInvalidStride means the schema resolves to a non-positive record
	// stride.
	ErrInvalidStride = errors.New("points: invalid record stride")
	// ErrTruncated means the stream ended inside a record it had promised
	// by its length.
	ErrTruncated = errors.New("points: truncated point record")
)

// RGBA is a plain 4-component byte color.
type RGBA struct {
	R, G, B, A uint8
}

var opaqueWhite = RGBA{255, 255, 255, 255}

// PointBlock is the decoded output of one block. Positions is always
// present; the other columns are nil unless the schema declares the
// corresponding attribute. A nil column means "no such data", distinct
// from an empty one.
type PointBlock struct {
	Positions       []mathutil.Vec3
	Colors          []RGBA
	Intensities     []uint16
	Classifications []uint8
}

// Len returns the number of decoded points.
func (b *PointBlock) Len() int {
	return len(b.Positions)
}

// decodeFunc extracts one attribute's value from a record into the block.
// off is the attribute's byte offset inside rec; the caller advances it.
type decodeFunc func(d *decoder, i int, attr schema.Attribute, rec []byte, off int)

// kindDecoders dispatches on attribute kind. Kinds without an entry are
// skipped: their bytes still count toward the stride, so the running
// offset stays correct. Adding a decode rule for a new kind is one entry
// here, the walking loop never changes.
var kindDecoders = map[schema.AttributeKind]decodeFunc{
	schema.KindPosition:       (*decoder).position,
	schema.KindRGB:            (*decoder).rgb,
	schema.KindPackedColor:    (*decoder).packedColor,
	schema.KindIntensity:      (*decoder).intensity,
	schema.KindClassification: (*decoder).classification,
}

type decoder struct {
	sch   *schema.Schema
	block *PointBlock

	// pending is the per-record scratch color: reset to opaque white each
	// record, overwritten by whichever color attribute comes last in
	// schema order, flushed to the column after the record's attributes
	// are walked.
	pending RGBA
}

// Decode decodes an in-memory block. maxPoints < 0 means no cap.
func Decode(data []byte, sch *schema.Schema, maxPoints int) (*PointBlock, error) {
	return DecodeFrom(bytes.NewReader(data), int64(len(data)), sch, maxPoints)
}

// DecodeFrom decodes from a sequential reader whose total byte length is
// known. The point count is the number of whole records the length holds;
// trailing bytes short of a full record are ignored. If the reader
// delivers fewer bytes than its declared length mid-record, the decode
// fails with ErrTruncated and no partial block is returned.
func DecodeFrom(r io.Reader, byteLen int64, sch *schema.Schema, maxPoints int) (*PointBlock, error) {
	stride := sch.RecordStride()
	if stride <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStride, stride)
	}

	count := int(byteLen / int64(stride))
	if maxPoints >= 0 && count > maxPoints {
		count = maxPoints
	}

	block := &PointBlock{Positions: make([]mathutil.Vec3, count)}
	if sch.HasKind(schema.KindRGB) || sch.HasKind(schema.KindPackedColor) {
		block.Colors = make([]RGBA, count)
	}
	if sch.HasKind(schema.KindIntensity) {
		block.Intensities = make([]uint16, count)
	}
	if sch.HasKind(schema.KindClassification) {
		block.Classifications = make([]uint8, count)
	}

	d := &decoder{sch: sch, block: block}
	rec := make([]byte, stride)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("%w: record %d of %d: %v", ErrTruncated, i, count, err)
		}
		d.pending = opaqueWhite
		off := 0
		for _, attr := range sch.Attributes {
			if fn := kindDecoders[attr.Kind]; fn != nil {
				fn(d, i, attr, rec, off)
			}
			off += attr.Size
		}
		if block.Colors != nil {
			block.Colors[i] = d.pending
		}
	}
	return block, nil
}

// position reads a coordinate triple. Float32 positions are already world
// coordinates; anything else is treated as quantized int32 and mapped
// through offset + scale ⊙ value.
func (d *decoder) position(i int, attr schema.Attribute, rec []byte, off int) {
	if off+12 > len(rec) {
		return
	}
	if attr.Type == schema.TypeFloat32 {
		d.block.Positions[i] = mathutil.Vec3{
			float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8:]))),
		}
		return
	}
	q := mathutil.Vec3{
		float64(int32(binary.LittleEndian.Uint32(rec[off:]))),
		float64(int32(binary.LittleEndian.Uint32(rec[off+4:]))),
		float64(int32(binary.LittleEndian.Uint32(rec[off+8:]))),
	}
	d.block.Positions[i] = d.sch.Offset.Add(d.sch.Scale.Mul(q))
}

func (d *decoder) rgb(i int, attr schema.Attribute, rec []byte, off int) {
	if off+3 > len(rec) {
		return
	}
	d.pending = RGBA{rec[off], rec[off+1], rec[off+2], 255}
}

func (d *decoder) packedColor(i int, attr schema.Attribute, rec []byte, off int) {
	if off+4 > len(rec) {
		return
	}
	d.pending = RGBA{rec[off], rec[off+1], rec[off+2], rec[off+3]}
}

func (d *decoder) intensity(i int, attr schema.Attribute, rec []byte, off int) {
	if off+2 > len(rec) || d.block.Intensities == nil {
		return
	}
	d.block.Intensities[i] = binary.LittleEndian.Uint16(rec[off:])
}

func (d *decoder) classification(i int, attr schema.Attribute, rec []byte, off int) {
	if off >= len(rec) || d.block.Classifications == nil {
		return
	}
	d.block.Classifications[i] = rec[off]
}
