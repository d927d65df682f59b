/*
Copyright 2026 by Kurt Griffiths

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tlru

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/vmihailenco/msgpack/v5"
)

// Media type markers, stored as the first byte of every generic record so
// that readers can decode records written with different settings.
const (
	mediaTypeMsgpack   byte = 0x01
	mediaTypeMsgpackS2 byte = 0x02
)

// Codec serializes cache values into self-describing records. Round-trips
// must be exact for all supported value types, compressed or not.
type Codec interface {
	// Encode serializes v into a record.
	Encode(v any) ([]byte, error)
	// Compress reframes a record produced by Encode into its compressed
	// form. Decode accepts both forms.
	Compress(record []byte) ([]byte, error)
	// Decode deserializes a record into v, which must be a pointer.
	Decode(record []byte, v any) error
}

// MsgpackCodec is the default Codec: a msgpack body behind a one-byte media
// type marker, with s2 block compression in the compressed form.
type MsgpackCodec struct{}

var _ Codec = MsgpackCodec{}

// Encode serializes v as a msgpack record.
func (MsgpackCodec) Encode(v any) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, &CacheError{Reason: ErrUnsupportedMediaType, Err: err}
	}
	record := make([]byte, 0, len(body)+1)
	record = append(record, mediaTypeMsgpack)
	record = append(record, body...)
	return record, nil
}

// Compress reframes a msgpack record as a compressed one. A record that is
// already compressed is returned unchanged.
func (MsgpackCodec) Compress(record []byte) ([]byte, error) {
	if len(record) == 0 {
		return nil, &CacheError{Reason: ErrUnsupportedMediaType, Err: errors.New("empty record")}
	}
	switch record[0] {
	case mediaTypeMsgpackS2:
		return record, nil
	case mediaTypeMsgpack:
	default:
		return nil, &CacheError{Reason: ErrUnsupportedMediaType, Err: fmt.Errorf("unknown media type 0x%02x", record[0])}
	}

	compressed := make([]byte, 0, len(record))
	compressed = append(compressed, mediaTypeMsgpackS2)
	return append(compressed, s2.Encode(nil, record[1:])...), nil
}

// Decode deserializes a record produced by Encode or Compress into v.
func (MsgpackCodec) Decode(record []byte, v any) error {
	if len(record) == 0 {
		return &CacheError{Reason: ErrUnsupportedMediaType, Err: errors.New("empty record")}
	}

	body := record[1:]
	switch record[0] {
	case mediaTypeMsgpack:
	case mediaTypeMsgpackS2:
		decompressed, err := s2.Decode(nil, body)
		if err != nil {
			return fmt.Errorf("decompressing record: %w", err)
		}
		body = decompressed
	default:
		return &CacheError{Reason: ErrUnsupportedMediaType, Err: fmt.Errorf("unknown media type 0x%02x", record[0])}
	}

	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}
