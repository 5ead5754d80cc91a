package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// GetByPath returns the value at a dotted JSON path such as
// "executor.timeoutSeconds" or "wordlists.dns.0".
func GetByPath(cfg *Config, path string) (any, error) {
	field, err := locate(cfg, path)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// SetByPath assigns value to the field at path. String input is coerced to
// the field's type; list fields take a comma-separated string.
func SetByPath(cfg *Config, path string, value any) error {
	field, err := locate(cfg, path)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("%s is not settable", path)
	}

	s, isString := value.(string)
	if !isString {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || !rv.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("%s: cannot assign %T to %s", path, value, field.Type())
		}
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	return assignString(field, path, s)
}

func assignString(field reflect.Value, path, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s expects a boolean, got %q", path, s)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("%s expects an integer, got %q", path, s)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", path, s)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%s: unsupported list type %s", path, field.Type())
		}
		items := splitList(s)
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("%s: unsupported type %s", path, field.Type())
	}
	return nil
}

func splitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// ListPaths flattens every leaf of cfg, including optional fields that
// would be omitted from the saved file, keyed by dotted path.
func ListPaths(cfg *Config) map[string]any {
	out := make(map[string]any)
	collect("", reflect.ValueOf(cfg).Elem(), out)
	return out
}

func collect(prefix string, v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		f := v.Field(i)
		if f.Kind() == reflect.Struct {
			collect(name, f, out)
			continue
		}
		out[name] = f.Interface()
	}
}

// locate walks structs by JSON tag and string lists by index.
func locate(cfg *Config, path string) (reflect.Value, error) {
	if cfg == nil {
		return reflect.Value{}, fmt.Errorf("nil config")
	}
	if strings.TrimSpace(path) == "" {
		return reflect.Value{}, fmt.Errorf("empty path")
	}

	cur := reflect.ValueOf(cfg).Elem()
	for _, key := range strings.Split(path, ".") {
		switch cur.Kind() {
		case reflect.Struct:
			next, ok := fieldByTag(cur, key)
			if !ok {
				return reflect.Value{}, fmt.Errorf("key not found: %s", path)
			}
			cur = next
		case reflect.Slice:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return reflect.Value{}, fmt.Errorf("invalid list index %q in %s", key, path)
			}
			cur = cur.Index(idx)
		default:
			return reflect.Value{}, fmt.Errorf("%s: %q is a leaf value", path, key)
		}
	}
	return cur, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if jsonName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
