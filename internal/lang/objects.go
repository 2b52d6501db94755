package lang

// ObjectKind classifies a declared name (spec.md §3).
type ObjectKind int

const (
	Undefined ObjectKind = iota
	Constant
	Variable
	Array
	ValueParameter
	ReferenceParameter
	ReturnParameter
	Procedure
)

var objectKindNames = [...]string{
	"Undefined",
	"Constant",
	"Variable",
	"Array",
	"ValueParameter",
	"ReferenceParameter",
	"ReturnParameter",
	"Procedure",
}

func (k ObjectKind) String() string {
	if k >= 0 && int(k) < len(objectKindNames) {
		return objectKindNames[k]
	}
	return "ObjectKind(?)"
}

// DataType classifies the type of a value, object or expression.
type DataType int

const (
	TypeUndefined DataType = iota
	TypeInteger
	TypeBoolean
	TypeChannel
	// TypeUniversal is the sentinel type of "any", compatible with every
	// other type. It is never attached to a real declaration; it is only
	// ever produced by a failed lookup so that the type checker can keep
	// going without cascading errors (spec.md §4.3, §9).
	TypeUniversal
)

var dataTypeNames = [...]string{
	"Undefined",
	"integer",
	"boolean",
	"channel",
	"Universal",
}

func (t DataType) String() string {
	if t >= 0 && int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "DataType(?)"
}

// Compatible reports whether a and b may appear as the two operands of a
// binary operator or on either side of an assignment. Universal is
// compatible with everything, including itself; otherwise types must match
// exactly (the source language has no implicit conversions).
func Compatible(a, b DataType) bool {
	if a == TypeUniversal || b == TypeUniversal {
		return true
	}
	return a == b
}
