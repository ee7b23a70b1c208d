package jsengine

import (
	"reflect"
	"strings"

	"github.com/dop251/goja"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Classify is the harness classifier for suites hosting script
// scenarios. Script values classify through the runtime's own class
// information; plain Go values fall back to the default classifier.
// Install with harness.WithClassifier(jsengine.Classify).
func Classify(v any) core.ValueKind {
	if gv, ok := v.(goja.Value); ok {
		return classifyJS(gv)
	}
	return core.ClassifyGoValue(v)
}

func classifyJS(v goja.Value) core.ValueKind {
	if v == nil || goja.IsUndefined(v) {
		return core.KindUndefined
	}
	if goja.IsNull(v) {
		return core.KindNull
	}

	if obj, ok := v.(*goja.Object); ok {
		name := obj.ClassName()
		switch name {
		case "Array":
			return core.KindArray
		case "ArrayBuffer":
			return core.KindArrayBuffer
		case "Function":
			return core.KindFunction
		case "Date":
			return core.KindDate
		case "RegExp":
			return core.KindRegExp
		case "Blob":
			return core.KindBlob
		case "Object":
			if k, ok := typedArrayKind(obj); ok {
				return k
			}
			// Host objects surface their kind via a classString property
			// (how a DOM-less embedding tags Blob-like results).
			if cs := obj.Get("classString"); cs != nil && !goja.IsUndefined(cs) {
				if k, ok := core.KindFromString(cs.String()); ok {
					return k
				}
			}
			return core.KindObject
		}
		if strings.HasSuffix(name, "Array") {
			return core.KindTypedArray
		}
		if k, ok := typedArrayKind(obj); ok {
			return k
		}
		return core.KindObject
	}

	if t := v.ExportType(); t != nil {
		switch t.Kind() {
		case reflect.Bool:
			return core.KindBoolean
		case reflect.String:
			return core.KindString
		case reflect.Int64, reflect.Float64:
			return core.KindNumber
		}
	}
	return core.KindUnknown
}

// typedArrayKind recognizes typed array views by their backing slice:
// the runtime exports them as slices of a fixed-size numeric element,
// while plain arrays export as []any.
func typedArrayKind(obj *goja.Object) (core.ValueKind, bool) {
	t := obj.ExportType()
	if t == nil || t.Kind() != reflect.Slice {
		return core.KindUnknown, false
	}
	switch t.Elem().Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return core.KindTypedArray, true
	}
	return core.KindUnknown, false
}
