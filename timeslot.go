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
	"fmt"
	"time"
)

// timedKeySuffixLen is the length of the separator plus the encoded time
// slot appended to every key of a TTL-bounded map.
const timedKeySuffixLen = 5

// timedKeySeparator splits the raw key from the slot bytes. It is reserved:
// storage keys are hashed digests or caller keys we suffix ourselves, so it
// never has to be escaped.
const timedKeySeparator = '\n'

// timeSlot buckets the given time into a discrete window of maxTTL seconds.
// Two writes land in the same slot iff they happen within the same window,
// so an item's effective lifetime is anywhere between zero and maxTTL,
// averaging maxTTL/2. Expiry is implicit in the key encoding; no per-item
// timers or sweeps are needed.
func timeSlot(now time.Time, maxTTL time.Duration) uint32 {
	return uint32(now.Unix() / int64(maxTTL/time.Second))
}

// timedKey appends the separator and the 4-byte slot number to key. The
// slot is always little-endian so that heterogeneous hosts sharing one
// persisted level 2 store derive identical keys.
func timedKey(key string, slot uint32) string {
	b := make([]byte, 0, len(key)+timedKeySuffixLen)
	b = append(b, key...)
	b = append(b, timedKeySeparator)
	b = binary.LittleEndian.AppendUint32(b, slot)
	return string(b)
}

// splitTimedKey recovers the raw key and slot from a timedKey result.
func splitTimedKey(tk string) (key string, slot uint32, ok bool) {
	if len(tk) < timedKeySuffixLen || tk[len(tk)-timedKeySuffixLen] != timedKeySeparator {
		return "", 0, false
	}
	slot = binary.LittleEndian.Uint32([]byte(tk[len(tk)-4:]))
	return tk[:len(tk)-timedKeySuffixLen], slot, true
}

func validateTTL(maxTTL time.Duration) error {
	if maxTTL == 0 {
		return nil
	}
	if maxTTL < time.Second {
		return &CacheError{Reason: ErrInvalidTTL, Err: fmt.Errorf("max TTL must be at least one second, got %s", maxTTL)}
	}
	return nil
}
