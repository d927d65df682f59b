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
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

type session struct {
	UserID int64
	Email  string
	Roles  []string
}

func Test_MsgpackCodec_RoundTrip(t *testing.T) {
	g := NewWithT(t)
	codec := MsgpackCodec{}

	in := session{
		UserID: 42,
		Email:  "user42@example.com",
		Roles:  []string{"admin", "ops"},
	}
	record, err := codec.Encode(in)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(record[0]).To(Equal(mediaTypeMsgpack))

	var out session
	g.Expect(codec.Decode(record, &out)).To(Succeed())
	g.Expect(out).To(Equal(in))
}

func Test_MsgpackCodec_Compress(t *testing.T) {
	g := NewWithT(t)
	codec := MsgpackCodec{}

	in := session{
		UserID: 42,
		Email:  strings.Repeat("tlru ", 2048),
	}
	record, err := codec.Encode(in)
	g.Expect(err).ToNot(HaveOccurred())

	compressed, err := codec.Compress(record)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(compressed[0]).To(Equal(mediaTypeMsgpackS2))
	g.Expect(len(compressed)).To(BeNumerically("<", len(record)))

	var out session
	g.Expect(codec.Decode(compressed, &out)).To(Succeed())
	g.Expect(out).To(Equal(in))

	// Compressing twice is a no-op.
	again, err := codec.Compress(compressed)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(again).To(Equal(compressed))
}

func Test_MsgpackCodec_UnknownMediaType(t *testing.T) {
	g := NewWithT(t)
	codec := MsgpackCodec{}

	var out session
	for _, record := range [][]byte{nil, {}, {0x7f, 0x01, 0x02}} {
		err := codec.Decode(record, &out)
		g.Expect(errors.Is(err, ErrUnsupportedMediaType)).To(BeTrue())

		_, err = codec.Compress(record)
		g.Expect(errors.Is(err, ErrUnsupportedMediaType)).To(BeTrue())
	}
}

func Test_MsgpackCodec_EncodeUnsupportedValue(t *testing.T) {
	g := NewWithT(t)
	codec := MsgpackCodec{}

	_, err := codec.Encode(make(chan int))
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, ErrUnsupportedMediaType)).To(BeTrue())
}

func Test_MsgpackCodec_CorruptRecords(t *testing.T) {
	g := NewWithT(t)
	codec := MsgpackCodec{}

	var out session
	err := codec.Decode([]byte{mediaTypeMsgpackS2, 0xff, 0xff, 0xff, 0xff}, &out)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("decompressing record"))

	// 0xc1 is never produced by a msgpack encoder.
	err = codec.Decode([]byte{mediaTypeMsgpack, 0xc1}, &out)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("decoding record"))
}
