// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package canonical implements the CIP-21 canonical CBOR encoding rules
// that the generic encoder cannot express directly: shortest-form heads,
// map keys ordered by their encoded byte representation, and the tag-258
// set framing used by post-Alonzo transaction bodies.
package canonical

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// CBOR major types
const (
	MajorUnsignedInt = 0
	MajorNegativeInt = 1
	MajorByteString  = 2
	MajorTextString  = 3
	MajorArray       = 4
	MajorMap         = 5
	MajorTag         = 6
	MajorSimple      = 7
)

// SetTag is the CBOR tag number for mathematical sets (RFC 8742 / CIP-21)
const SetTag = 258

// EncodeHead returns the shortest-form head for the given major type and
// argument value
func EncodeHead(major byte, n uint64) []byte {
	mt := major << 5
	switch {
	case n <= 23:
		return []byte{mt | byte(n)}
	case n <= 0xff:
		return []byte{mt | 24, byte(n)}
	case n <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = mt | 25
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = mt | 26
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = mt | 27
		binary.BigEndian.PutUint64(buf[1:], n)
		return buf
	}
}

// HeadSize returns the number of bytes EncodeHead would emit for n
func HeadSize(n uint64) int {
	switch {
	case n <= 23:
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// EncodeUint encodes an unsigned integer in shortest form
func EncodeUint(n uint64) []byte {
	return EncodeHead(MajorUnsignedInt, n)
}

// EncodeInt encodes a signed integer in shortest form
func EncodeInt(n int64) []byte {
	if n >= 0 {
		return EncodeHead(MajorUnsignedInt, uint64(n))
	}
	return EncodeHead(MajorNegativeInt, uint64(-(n + 1)))
}

// EncodeBytes encodes a definite-length byte string
func EncodeBytes(data []byte) []byte {
	head := EncodeHead(MajorByteString, uint64(len(data)))
	return append(head, data...)
}

// EncodeText encodes a definite-length text string
func EncodeText(s string) []byte {
	head := EncodeHead(MajorTextString, uint64(len(s)))
	return append(head, []byte(s)...)
}

// EncodeBool encodes a boolean simple value
func EncodeBool(b bool) []byte {
	if b {
		return []byte{0xf5}
	}
	return []byte{0xf4}
}

// Null is the CBOR null simple value
func Null() []byte {
	return []byte{0xf6}
}

// EncodeTagHead returns the head for the given tag number
func EncodeTagHead(tag uint64) []byte {
	return EncodeHead(MajorTag, tag)
}

// EncodeArray concatenates pre-encoded items into a definite-length array
func EncodeArray(items [][]byte) []byte {
	result := EncodeHead(MajorArray, uint64(len(items)))
	for _, item := range items {
		result = append(result, item...)
	}
	return result
}

// EncodeSet encodes pre-encoded items as a definite-length array, optionally
// framed with the 258 set tag. Callers that decoded a bare array pass
// useTag=false to round-trip the original framing.
func EncodeSet(items [][]byte, useTag bool) []byte {
	var result []byte
	if useTag {
		result = EncodeTagHead(SetTag)
	}
	result = append(result, EncodeArray(items)...)
	return result
}

// Pair is a pre-encoded map entry
type Pair struct {
	Key   []byte
	Value []byte
}

// EncodeMap sorts the given pairs by the encoded bytes of their keys and
// concatenates them into a definite-length map. The required ordering is
// over the CBOR byte representation of each key, not its logical value, so
// callers must encode keys before sorting can happen.
func EncodeMap(pairs []Pair) []byte {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0
	})
	result := EncodeHead(MajorMap, uint64(len(sorted)))
	for _, pair := range sorted {
		result = append(result, pair.Key...)
		result = append(result, pair.Value...)
	}
	return result
}

// MajorType returns the major type of the first byte of an encoded item,
// or -1 for empty input
func MajorType(data []byte) int {
	if len(data) == 0 {
		return -1
	}
	return int(data[0] >> 5)
}

// setTagPrefix is the encoded head of tag 258
var setTagPrefix = []byte{0xd9, 0x01, 0x02}

// StripSetTag removes a leading 258 set tag if present, reporting whether
// one was found
func StripSetTag(data []byte) ([]byte, bool) {
	if bytes.HasPrefix(data, setTagPrefix) {
		return data[len(setTagPrefix):], true
	}
	return data, false
}
