// Package encoding provides the wire codecs the store uses to persist
// embedding vectors and free-form context metadata inside SQLite blob/text
// columns.
package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned when a vector is malformed or truncated.
var ErrInvalidVector = errors.New("invalid vector")

// EncodeVector serializes a float32 vector as a length-prefixed
// little-endian byte blob.
func EncodeVector(vector []float32) ([]byte, error) {
	if vector == nil {
		return nil, ErrInvalidVector
	}

	vectorLen := len(vector)
	if vectorLen > math.MaxInt32 {
		return nil, fmt.Errorf("vector too large: %d elements exceeds maximum", vectorLen)
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, int32(vectorLen)); err != nil {
		return nil, fmt.Errorf("encode vector length: %w", err)
	}
	for _, val := range vector {
		if err := binary.Write(buf, binary.LittleEndian, val); err != nil {
			return nil, fmt.Errorf("encode vector value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeVector reverses EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}

	buf := bytes.NewReader(data)
	var length int32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("decode vector length: %w", err)
	}
	if length < 0 {
		return nil, ErrInvalidVector
	}
	if length == 0 {
		return []float32{}, nil
	}

	expectedBytes := int(length) * 4
	if buf.Len() < expectedBytes {
		return nil, ErrInvalidVector
	}

	vector := make([]float32, length)
	for i := int32(0); i < length; i++ {
		if err := binary.Read(buf, binary.LittleEndian, &vector[i]); err != nil {
			return nil, fmt.Errorf("decode vector value at index %d: %w", i, err)
		}
	}
	return vector, nil
}

// EncodeMetadata serializes a context map to a JSON string, returning ""
// for a nil map rather than the literal "null".
func EncodeMetadata(metadata map[string]string) (string, error) {
	if metadata == nil {
		return "", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

// DecodeMetadata reverses EncodeMetadata; an empty string decodes to a nil
// map rather than an error.
func DecodeMetadata(jsonStr string) (map[string]string, error) {
	if jsonStr == "" {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(jsonStr), &metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return metadata, nil
}

// ValidateVector rejects nil/empty vectors and any NaN or infinite
// component.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return ErrInvalidVector
	}
	for _, val := range vector {
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrInvalidVector
		}
	}
	return nil
}
