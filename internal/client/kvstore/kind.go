package kvstore

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind is the value type a preference is stored under. The same key may hold
// one value per kind.
type Kind string

const (
	Bool   Kind = "bool"
	Int    Kind = "int"
	Long   Kind = "long"
	Float  Kind = "float"
	String Kind = "string"
)

// Kinds lists every kind.
func Kinds() []Kind {
	return []Kind{Bool, Int, Long, Float, String}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown preference kind %q", s)
}

// Value is the set of Go types a preference can hold.
type Value interface {
	~bool | ~int32 | ~int64 | ~float32 | ~string
}

// KindOf returns the kind T is stored under.
func KindOf[T Value]() Kind {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int32:
		return Int
	case reflect.Int64:
		return Long
	case reflect.Float32:
		return Float
	default:
		return String
	}
}

func encode[T Value](v T) []byte {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return strconv.AppendBool(nil, rv.Bool())
	case reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, rv.Int(), 10)
	case reflect.Float32:
		return strconv.AppendFloat(nil, rv.Float(), 'g', -1, 32)
	default:
		return []byte(rv.String())
	}
}

func decode[T Value](raw []byte) (T, error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	s := string(raw)

	switch rv.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, err
		}
		rv.SetBool(b)
	case reflect.Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return v, err
		}
		rv.SetInt(n)
	case reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return v, err
		}
		rv.SetInt(n)
	case reflect.Float32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return v, err
		}
		rv.SetFloat(f)
	default:
		rv.SetString(s)
	}
	return v, nil
}

// Format renders v the way it is persisted.
func Format[T Value](v T) string {
	return string(encode(v))
}

// Parse reads a value written by Format.
func Parse[T Value](s string) (T, error) {
	v, err := decode[T]([]byte(s))
	if err != nil {
		return v, fmt.Errorf("invalid %s value %q: %w", KindOf[T](), s, err)
	}
	return v, nil
}
