package schema

import "strings"

// AttributeKind identifies what a point attribute stores. The kind drives
// both the decode rule and the default byte layout.
type AttributeKind int

const (
	KindUnknown AttributeKind = iota
	KindPosition
	KindPackedColor
	KindRGB
	KindIntensity
	KindClassification
	KindNormal
	KindGPSTime
	KindReturnNumber
	KindNumberOfReturns
	KindPointSourceID
)

var kindNames = map[AttributeKind]string{
	KindUnknown:         "unknown",
	KindPosition:        "position",
	KindPackedColor:     "packed-color",
	KindRGB:             "rgb",
	KindIntensity:       "intensity",
	KindClassification:  "classification",
	KindNormal:          "normal",
	KindGPSTime:         "gps-time",
	KindReturnNumber:    "return-number",
	KindNumberOfReturns: "number-of-returns",
	KindPointSourceID:   "point-source-id",
}

func (k AttributeKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ComponentType describes how the raw bytes of an attribute's elements are
// interpreted; distinct from the attribute kind.
type ComponentType int

const (
	TypeUInt8 ComponentType = iota
	TypeInt8
	TypeUInt16
	TypeInt16
	TypeUInt32
	TypeInt32
	TypeFloat32
	TypeFloat64
)

var typeNames = map[ComponentType]string{
	TypeUInt8:   "uint8",
	TypeInt8:    "int8",
	TypeUInt16:  "uint16",
	TypeInt16:   "int16",
	TypeUInt32:  "uint32",
	TypeInt32:   "int32",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

func (t ComponentType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "uint32"
}

// Attribute describes one attribute's slot within a point record.
// Size is the total byte span in the record, not per-element.
type Attribute struct {
	Kind     AttributeKind
	Type     ComponentType
	Size     int
	Elements int
}

// kindTokens maps name substrings to kinds, in priority order. Ordering is
// load-bearing twice over: COLOR_PACKED must be tested before the generic
// COLOR token, and NUMBER_OF_RETURNS before RETURN_NUMBER (each specific
// token contains the generic one as a substring).
var kindTokens = []struct {
	token string
	kind  AttributeKind
}{
	{"POSITION", KindPosition},
	{"COLOR_PACKED", KindPackedColor},
	{"RGB", KindRGB},
	{"COLOR", KindRGB},
	{"INTENSITY", KindIntensity},
	{"CLASSIFICATION", KindClassification},
	{"NORMAL", KindNormal},
	{"GPS", KindGPSTime},
	{"NUMBER_OF_RETURNS", KindNumberOfReturns},
	{"RETURN_NUMBER", KindReturnNumber},
	{"SOURCE", KindPointSourceID},
}

// MatchKind maps an attribute name from the document to a kind by
// case-insensitive substring matching. Unmatched names degrade to
// KindUnknown rather than failing: schema variants routinely carry
// attributes this decoder does not extract.
func MatchKind(name string) AttributeKind {
	upper := strings.ToUpper(name)
	for _, kt := range kindTokens {
		if strings.Contains(upper, kt.token) {
			return kt.kind
		}
	}
	return KindUnknown
}

// typeTokens maps type-name substrings to component types. Unsigned tokens
// come before signed ones: UINT32 contains INT32 as a substring.
var typeTokens = []struct {
	token string
	typ   ComponentType
}{
	{"DOUBLE", TypeFloat64},
	{"FLOAT", TypeFloat32},
	{"UINT32", TypeUInt32},
	{"INT32", TypeInt32},
	{"UINT16", TypeUInt16},
	{"INT16", TypeInt16},
	{"UINT8", TypeUInt8},
	{"INT8", TypeInt8},
}

// MatchType maps a component-type token to a ComponentType by
// case-insensitive substring matching.
func MatchType(token string) (ComponentType, bool) {
	upper := strings.ToUpper(token)
	for _, tt := range typeTokens {
		if strings.Contains(upper, tt.token) {
			return tt.typ, true
		}
	}
	return TypeUInt32, false
}

// defaultLayout returns the (size, elements) to assume when the document
// omits them for an attribute of the given kind.
func defaultLayout(kind AttributeKind) (size, elements int) {
	switch kind {
	case KindPosition:
		return 12, 3
	case KindRGB:
		return 3, 3
	case KindPackedColor:
		return 4, 4
	case KindIntensity:
		return 2, 1
	case KindClassification:
		return 1, 1
	default:
		return 4, 1
	}
}
