package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidBinary is returned when a JSON value cannot be read as a byte payload.
var ErrInvalidBinary = errors.New("invalid binary payload")

// Binary is an image payload (payment evidence, delivery receipt, product image).
//
// It is always written as a base64 string. Reading also accepts the shapes older
// backends produce: a JSON array of byte values, a Node Buffer object
// ({"type":"Buffer","data":[...]}) and an object keyed by byte offset
// ({"0":137,"1":80,...}), which is rebuilt in numeric key order.
type Binary []byte

// MarshalJSON implements json.Marshaler.
func (b Binary) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Binary) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidBinary)
	}
	decoded, err := decodeBinary(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

func decodeBinary(r gjson.Result) (Binary, error) {
	switch {
	case r.Type == gjson.Null:
		return nil, nil
	case r.Type == gjson.String:
		return decodeBase64(r.String())
	case r.IsArray():
		return decodeByteArray(r)
	case r.IsObject():
		if r.Get("type").String() == "Buffer" && r.Get("data").IsArray() {
			return decodeByteArray(r.Get("data"))
		}
		return decodeOffsetMap(r)
	default:
		return nil, fmt.Errorf("%w: unexpected JSON %s", ErrInvalidBinary, r.Type)
	}
}

func decodeBase64(s string) (Binary, error) {
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, fmt.Errorf("%w: unsupported data URI", ErrInvalidBinary)
		}
		s = s[comma+1:]
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBinary, err)
	}
	return Binary(out), nil
}

func byteValue(v gjson.Result) (byte, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: byte value %s is not a number", ErrInvalidBinary, v.Raw)
	}
	n := v.Int()
	if n < 0 || n > 255 || float64(n) != v.Float() {
		return 0, fmt.Errorf("%w: byte value %s out of range", ErrInvalidBinary, v.Raw)
	}
	return byte(n), nil
}

func decodeByteArray(r gjson.Result) (Binary, error) {
	values := r.Array()
	out := make(Binary, 0, len(values))
	for _, v := range values {
		bt, err := byteValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	return out, nil
}

type offsetByte struct {
	offset int
	value  byte
}

// decodeOffsetMap rebuilds the byte sequence from an object keyed by offset.
// Keys must be exactly 0..n-1; JSON object order is not trusted.
func decodeOffsetMap(r gjson.Result) (Binary, error) {
	var entries []offsetByte
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		var offset int
		offset, err = strconv.Atoi(key.String())
		if err != nil || offset < 0 {
			err = fmt.Errorf("%w: key %q is not a byte offset", ErrInvalidBinary, key.String())
			return false
		}
		var bt byte
		bt, err = byteValue(value)
		if err != nil {
			return false
		}
		entries = append(entries, offsetByte{offset: offset, value: bt})
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })
	out := make(Binary, len(entries))
	for i, e := range entries {
		if e.offset != i {
			return nil, fmt.Errorf("%w: missing byte at offset %d", ErrInvalidBinary, i)
		}
		out[i] = e.value
	}
	return out, nil
}
