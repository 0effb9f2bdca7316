package config

import (
	"fmt"
	"reflect"
	"strings"
)

// KeySeparator is the configuration path separator.
const KeySeparator = ":"

// KeyValue is one flattened configuration setting.
type KeyValue struct {
	Path  string
	Value string
}

// PathFlattener converts an options tree into ordered (path, value) pairs.
// Keys are the JSON names of the fields, joined by Separator and prefixed by
// Prefix. Pairs follow field declaration order; nil branches and empty values
// are not present and are skipped.
type PathFlattener struct {
	Prefix    string
	Separator string
}

// NewPathFlattener returns a flattener configured from env. An empty
// separator falls back to KeySeparator.
func NewPathFlattener(env EnvironmentConfig) *PathFlattener {
	sep := env.Separator
	if sep == "" {
		sep = KeySeparator
	}
	return &PathFlattener{Prefix: env.Prefix, Separator: sep}
}

// Flatten returns the present settings of opts as ordered pairs.
func (f *PathFlattener) Flatten(opts *RootOptions) []KeyValue {
	var out []KeyValue
	if opts == nil {
		return out
	}
	sep := f.Separator
	if sep == "" {
		sep = KeySeparator
	}
	f.walk(reflect.ValueOf(opts), nil, sep, &out)
	return out
}

func (f *PathFlattener) walk(v reflect.Value, path []string, sep string, out *[]KeyValue) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := keyName(field)
			if name == "-" {
				continue
			}
			f.walk(v.Field(i), append(path[:len(path):len(path)], name), sep, out)
		}
	default:
		if v.IsZero() {
			return
		}
		*out = append(*out, KeyValue{
			Path:  f.Prefix + strings.Join(path, sep),
			Value: fmt.Sprint(v.Interface()),
		})
	}
}

// keyName returns the configuration key of a struct field: its JSON name,
// or the Go field name when untagged.
func keyName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}
