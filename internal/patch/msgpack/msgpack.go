package msgpack

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoder is a type alias.
type Encoder = msgpack.Encoder

// Decoder rejects fields the destination type does not declare.
type Decoder struct {
	*msgpack.Decoder
}

// NewEncoder returns an encoder that writes to w with compact
// integer and float encodings.
func NewEncoder(w io.Writer) *Encoder {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	enc.UseCompactFloats(true)
	return enc
}

// NewDecoder returns a decoder that reads from r and fails on
// unknown fields.
func NewDecoder(r io.Reader) *Decoder {
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	return &Decoder{Decoder: dec}
}

// Decode reads the next value into v. Unknown-field errors name the
// destination type.
func (dec *Decoder) Decode(v interface{}) error {
	err := dec.Decoder.Decode(v)
	if err != nil && strings.Contains(err.Error(), "unknown field") {
		return fmt.Errorf("%s in %s", err, reflect.TypeOf(v))
	}
	return err
}

// Marshal returns the MessagePack encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	err := NewEncoder(buf).Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the value pointed to by v.
func Unmarshal(data []byte, v interface{}) error {
	return NewDecoder(bytes.NewReader(data)).Decode(v)
}
