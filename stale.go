package abuild

import (
	"encoding/json"
	"reflect"

	"shanhu.io/misc/errcode"
)

// Args is the argument tuple passed to a producer. Every element must be
// a string, []byte, bool, integer, float, []string or nested Args.
type Args []interface{}

// staleKey is the cheap comparison value that decides if a producer needs
// to run again.
type staleKey struct {
	modTime int64
	args    string
}

func makeStaleKey(deps []string, args Args) (*staleKey, error) {
	canon, err := canonicalArgs(args)
	if err != nil {
		return nil, errcode.Annotate(err, "arguments")
	}
	t, err := latestModTime(deps)
	if err != nil {
		return nil, err
	}
	return &staleKey{modTime: t, args: canon}, nil
}

func (k *staleKey) equal(other *staleKey) bool {
	if k == nil || other == nil {
		return false
	}
	return *k == *other
}

// typedArg tags a value with its kind so that "1" and 1 encode differently.
type typedArg struct {
	T string
	V interface{} `json:",omitempty"`
}

func normalizeArg(v interface{}) (*typedArg, error) {
	switch v := v.(type) {
	case nil:
		return &typedArg{T: "nil"}, nil
	case string:
		return &typedArg{T: "s", V: v}, nil
	case []byte:
		return &typedArg{T: "b", V: v}, nil
	case bool:
		return &typedArg{T: "t", V: v}, nil
	case []string:
		return &typedArg{T: "ss", V: v}, nil
	case Args:
		var list []*typedArg
		for i, a := range v {
			n, err := normalizeArg(a)
			if err != nil {
				return nil, errcode.Annotatef(err, "element %d", i)
			}
			list = append(list, n)
		}
		return &typedArg{T: "a", V: list}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return &typedArg{T: "s", V: rv.String()}, nil
	case reflect.Bool:
		return &typedArg{T: "t", V: rv.Bool()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return &typedArg{T: "i", V: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return &typedArg{T: "u", V: rv.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return &typedArg{T: "f", V: rv.Float()}, nil
	}
	return nil, errcode.InvalidArgf("unsupported argument type %T", v)
}

func canonicalArgs(args Args) (string, error) {
	var list []*typedArg
	for i, a := range args {
		n, err := normalizeArg(a)
		if err != nil {
			return "", errcode.Annotatef(err, "argument %d", i)
		}
		list = append(list, n)
	}
	bs, err := json.Marshal(list)
	if err != nil {
		return "", errcode.Annotate(err, "json marshal")
	}
	return string(bs), nil
}
