package layering

import "reflect"

var reservedKeys = map[string]struct{}{
	"__proto__": {},
	"prototype": {},
}

// IsReservedKey reports whether key is a meta key that Merge never copies or
// merges.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// Merge applies override on top of base and returns a new tree. Mapping nodes
// present on both sides are merged recursively; any other override value
// replaces the base value wholesale. Subtrees of base that override does not
// touch are shared with the result, every node on a modified path is freshly
// allocated, and values taken from override are deep copied. Neither input is
// mutated.
func Merge(base, override map[string]any) map[string]any {
	if override == nil {
		return base
	}
	result := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		if IsReservedKey(key) {
			continue
		}
		result[key] = value
	}
	for key, value := range override {
		if IsReservedKey(key) {
			continue
		}
		overrideNode, overrideIsNode := AsNode(value)
		baseNode, baseIsNode := AsNode(result[key])
		switch {
		case overrideIsNode && baseIsNode:
			result[key] = Merge(baseNode, overrideNode)
		case overrideIsNode:
			result[key] = Merge(map[string]any{}, overrideNode)
		default:
			result[key] = Clone(value)
		}
	}
	return result
}

// Fold merges overrides onto base from left to right.
func Fold(base map[string]any, overrides ...map[string]any) map[string]any {
	current := base
	for _, override := range overrides {
		current = Merge(current, override)
	}
	return current
}

// AsNode reports whether value is a mapping node. YAML decoders may produce
// map[any]any, which is normalized to a fresh map[string]any.
func AsNode(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, typed != nil
	case map[any]any:
		if typed == nil {
			return nil, false
		}
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of value. Functions and unexported struct fields
// are copied by reference.
func Clone[T any](value T) T {
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	if out, ok := cloned.Interface().(T); ok {
		return out
	}
	return value
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		if !v.CanInterface() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
