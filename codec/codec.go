// Package codec provides value transforms that serialize objects to the
// []byte data most backings store, plus DynamoDB attribute-map codecs.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/mplewis/layerkv"
)

func encodeErr(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", layerkv.ErrSerialization, format, err)
}

func decodeErr(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", layerkv.ErrDeserialization, format, err)
}

// StringCodec stores strings as their UTF-8 bytes.
type StringCodec struct{}

// String returns a codec between string objects and []byte data.
func String() StringCodec { return StringCodec{} }

func (StringCodec) EncodeValue(obj string) ([]byte, error) { return []byte(obj), nil }
func (StringCodec) DecodeValue(data []byte) (string, error) { return string(data), nil }

// JSONCodec stores values of type T as JSON.
type JSONCodec[T any] struct{}

// JSON returns a JSON codec for T.
func JSON[T any]() JSONCodec[T] { return JSONCodec[T]{} }

func (JSONCodec[T]) EncodeValue(obj T) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, encodeErr("json", err)
	}
	return data, nil
}

func (JSONCodec[T]) DecodeValue(data []byte) (T, error) {
	var obj T
	if err := json.Unmarshal(data, &obj); err != nil {
		return obj, decodeErr("json", err)
	}
	return obj, nil
}

// YAMLCodec stores values of type T as YAML.
type YAMLCodec[T any] struct{}

// YAML returns a YAML codec for T.
func YAML[T any]() YAMLCodec[T] { return YAMLCodec[T]{} }

func (YAMLCodec[T]) EncodeValue(obj T) ([]byte, error) {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return nil, encodeErr("yaml", err)
	}
	return data, nil
}

func (YAMLCodec[T]) DecodeValue(data []byte) (T, error) {
	var obj T
	if err := yaml.UnmarshalStrict(data, &obj); err != nil {
		return obj, decodeErr("yaml", err)
	}
	return obj, nil
}

// TOMLCodec stores values of type T as TOML. T must encode to a table,
// i.e. a struct or a map.
type TOMLCodec[T any] struct{}

// TOML returns a TOML codec for T.
func TOML[T any]() TOMLCodec[T] { return TOMLCodec[T]{} }

func (TOMLCodec[T]) EncodeValue(obj T) ([]byte, error) {
	data, err := toml.Marshal(obj)
	if err != nil {
		return nil, encodeErr("toml", err)
	}
	return data, nil
}

func (TOMLCodec[T]) DecodeValue(data []byte) (T, error) {
	var obj T
	if err := toml.Unmarshal(data, &obj); err != nil {
		return obj, decodeErr("toml", err)
	}
	return obj, nil
}

// ByName returns the []byte codec for T registered under name: "json",
// "yaml" or "toml".
func ByName[T any](name string) (layerkv.ValueTransform[T, []byte], error) {
	switch name {
	case "json":
		return JSON[T](), nil
	case "yaml", "yml":
		return YAML[T](), nil
	case "toml":
		return TOML[T](), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
