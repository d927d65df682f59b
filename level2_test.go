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
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

// failingLevel2 is a backend that always fails, standing in for an
// unreachable server. It counts calls so tests can assert retry behavior.
type failingLevel2 struct {
	err   error
	calls int
}

func (s *failingLevel2) Get(context.Context, string) ([]byte, error) {
	s.calls++
	return nil, s.err
}

func (s *failingLevel2) Set(context.Context, string, []byte) error {
	s.calls++
	return s.err
}

func (s *failingLevel2) Incr(context.Context, string) (int64, error) {
	s.calls++
	return 0, s.err
}

func (s *failingLevel2) RW() Level2RW {
	return Level2RW{R: s, W: s}
}

func Test_MemoryLevel2_GetSet(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	store := NewMemoryLevel2()

	_, err := store.Get(ctx, "absent")
	g.Expect(err).To(MatchError(ErrNotFound))

	record := []byte("payload")
	g.Expect(store.Set(ctx, "k", record)).To(Succeed())
	g.Expect(store.Len()).To(Equal(1))

	got, err := store.Get(ctx, "k")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]byte("payload")))

	// The store holds copies: mutating either buffer must not leak through.
	record[0] = 'X'
	got[1] = 'Y'
	got, err = store.Get(ctx, "k")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]byte("payload")))
}

func Test_MemoryLevel2_Incr(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	store := NewMemoryLevel2()

	n, err := store.Incr(ctx, "counter")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(n).To(Equal(int64(1)))

	n, err = store.Incr(ctx, "counter")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(n).To(Equal(int64(2)))

	// Incr picks up values written as decimal strings.
	g.Expect(store.Set(ctx, "seeded", []byte("41"))).To(Succeed())
	n, err = store.Incr(ctx, "seeded")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(n).To(Equal(int64(42)))

	g.Expect(store.Set(ctx, "garbage", []byte("not a number"))).To(Succeed())
	_, err = store.Incr(ctx, "garbage")
	g.Expect(err).To(HaveOccurred())
	g.Expect(err).ToNot(MatchError(ErrNotFound))
}

func Test_MemoryLevel2_RW(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	store := NewMemoryLevel2()

	rw := store.RW()
	g.Expect(rw.W.Set(ctx, "k", []byte("v"))).To(Succeed())
	got, err := rw.R.Get(ctx, "k")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]byte("v")))
}
