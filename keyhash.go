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
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
)

// hashedKeyLen is the width of every storage key: two concatenated 64-bit
// digests.
const hashedKeyLen = 16

// keyHasher normalizes namespaced, time-sliced keys of arbitrary length
// into fixed-width storage keys. Hashing keeps memory usage and backend key
// sizes predictable; some backends also perform better with short keys.
type keyHasher struct {
	namespace string
}

func newKeyHasher(namespace string) keyHasher {
	return keyHasher{namespace: namespace}
}

// sum derives the storage key for a raw key in the given time slot.
//
// Be extremely cautious about changing this implementation, as it will
// result in invalidating any items in caches, etc. since they will now
// have a different key.
//
// The input is framed as namespace || '\n' || key || '\n' || slot so that
// field boundaries stay unambiguous, with the slot in little-endian like the
// timed-key encoding. Two independent non-cryptographic hashes over the same
// input are concatenated, big-endian, to reduce collision probability; this
// is a performance-motivated cache key, not a security boundary.
func (h keyHasher) sum(key string, slot uint32) string {
	in := make([]byte, 0, len(h.namespace)+len(key)+6)
	in = append(in, h.namespace...)
	in = append(in, timedKeySeparator)
	in = append(in, key...)
	in = append(in, timedKeySeparator)
	in = binary.LittleEndian.AppendUint32(in, slot)

	var digest [hashedKeyLen]byte
	binary.BigEndian.PutUint64(digest[:8], xxhash.Sum64(in))
	binary.BigEndian.PutUint64(digest[8:], siphash.Hash(0, 0, in))
	return string(digest[:])
}
