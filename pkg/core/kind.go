package core

import (
	"reflect"
	"time"
)

// ValueKind is the closed set of runtime value classifications the
// harness recognizes. Asynchronous host APIs may hand back structurally
// similar but semantically distinct values (a binary blob vs. a raw byte
// buffer); kind assertions compare against this enumeration rather than
// doing open-ended reflection.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindArrayBuffer
	KindTypedArray
	KindBlob
	KindDate
	KindRegExp
)

// String returns the class string for the kind, matching the casing web
// platform APIs use for the corresponding types.
func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindFunction:
		return "Function"
	case KindArrayBuffer:
		return "ArrayBuffer"
	case KindTypedArray:
		return "TypedArray"
	case KindBlob:
		return "Blob"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	default:
		return "unknown"
	}
}

// KindFromString maps a class string back onto the closed set.
func KindFromString(s string) (ValueKind, bool) {
	for k := KindUndefined; k <= KindRegExp; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// Classifier maps a runtime value onto the closed ValueKind set. Host
// layers (e.g. a script engine) supply their own classifier for the
// value representation they produce.
type Classifier func(v any) ValueKind

// Blobber marks host values that classify as binary large objects.
type Blobber interface {
	BlobKind() ValueKind
}

// ClassifyGoValue is the default classifier for plain Go values.
func ClassifyGoValue(v any) ValueKind {
	if v == nil {
		return KindNull
	}
	if b, ok := v.(Blobber); ok {
		return b.BlobKind()
	}
	switch v.(type) {
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		return KindString
	case []byte:
		return KindArrayBuffer
	case time.Time:
		return KindDate
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map, reflect.Struct, reflect.Ptr:
		return KindObject
	case reflect.Func:
		return KindFunction
	default:
		return KindUnknown
	}
}
