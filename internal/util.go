// Package internal holds small helpers shared across the module's packages
// that don't belong in any single public package.
package internal

import "reflect"

// IsTypedNil reports whether v is nil, or is a non-nil interface value
// wrapping a nil pointer/slice/map/func/chan — the case where `v == nil`
// alone gives the wrong answer because v's interface type is non-nil even
// though the underlying value is.
func IsTypedNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
