package gorawrstash

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnsupportedType is returned by Store for values that are not a
	// string, byte slice, integer or float.
	ErrUnsupportedType = errors.New("gorawrstash: unsupported value type")

	// ErrDecode wraps failures of the built-in decoders.
	ErrDecode = errors.New("gorawrstash: cannot decode value")
)

// DecodeFunc turns raw stored bytes into a caller-facing value.
type DecodeFunc func([]byte) (any, error)

// encode renders a scalar the way it is written to the store: text for
// strings, decimal for numbers, bytes as given.
func encode(v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return bytes.Clone(x), nil
	case int:
		return strconv.AppendInt(nil, int64(x), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(x), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(x), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(x), 10), nil
	case int64:
		return strconv.AppendInt(nil, x, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(x), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(x), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(x), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(x), 10), nil
	case uint64:
		return strconv.AppendUint(nil, x, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, x, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// DecodeString returns the stored bytes as text.
func DecodeString(b []byte) (string, error) {
	return string(b), nil
}

// DecodeInt parses the stored bytes as a base 10 integer.
func DecodeInt(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as integer", ErrDecode, b)
	}
	return n, nil
}

// DecodeFloat parses the stored bytes as a float.
func DecodeFloat(b []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as float", ErrDecode, b)
	}
	return f, nil
}

// Decoder adapts a typed decoder for use with Cache.Get.
func Decoder[T any](fn func([]byte) (T, error)) DecodeFunc {
	return func(b []byte) (any, error) {
		return fn(b)
	}
}
