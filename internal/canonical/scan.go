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

package canonical

import (
	"errors"
	"fmt"
)

// maxContainerSize caps string lengths and container element counts so
// adversarial inputs cannot demand unbounded allocations
const maxContainerSize = 0xffffffff

var errTruncated = errors.New("truncated CBOR item")

// itemHead reads one head, returning the major type, argument value,
// whether the length is indefinite, and the head size in bytes
func itemHead(data []byte) (major byte, arg uint64, indef bool, size int, err error) {
	if len(data) == 0 {
		return 0, 0, false, 0, errTruncated
	}
	major = data[0] >> 5
	info := data[0] & 0x1f
	switch {
	case info <= 23:
		return major, uint64(info), false, 1, nil
	case info == 24:
		if len(data) < 2 {
			return 0, 0, false, 0, errTruncated
		}
		return major, uint64(data[1]), false, 2, nil
	case info == 25:
		if len(data) < 3 {
			return 0, 0, false, 0, errTruncated
		}
		return major, uint64(data[1])<<8 | uint64(data[2]), false, 3, nil
	case info == 26:
		if len(data) < 5 {
			return 0, 0, false, 0, errTruncated
		}
		arg = uint64(data[1])<<24 | uint64(data[2])<<16 | uint64(data[3])<<8 | uint64(data[4])
		return major, arg, false, 5, nil
	case info == 27:
		if len(data) < 9 {
			return 0, 0, false, 0, errTruncated
		}
		for i := 1; i <= 8; i++ {
			arg = arg<<8 | uint64(data[i])
		}
		return major, arg, false, 9, nil
	case info == 31:
		if major >= MajorByteString && major <= MajorMap {
			return major, 0, true, 1, nil
		}
		if major == MajorSimple {
			// break marker, reported as indefinite simple
			return major, 0, true, 1, nil
		}
		return 0, 0, false, 0, fmt.Errorf("invalid indefinite head %#02x", data[0])
	default:
		return 0, 0, false, 0, fmt.Errorf("reserved additional info %d", info)
	}
}

// ItemLength returns the total encoded length of the first CBOR item in
// data, validating structure as it goes
func ItemLength(data []byte) (int, error) {
	major, arg, indef, headSize, err := itemHead(data)
	if err != nil {
		return 0, err
	}
	switch major {
	case MajorUnsignedInt, MajorNegativeInt:
		return headSize, nil
	case MajorByteString, MajorTextString:
		if indef {
			offset := headSize
			for {
				if offset >= len(data) {
					return 0, errTruncated
				}
				if data[offset] == 0xff {
					return offset + 1, nil
				}
				chunkLen, err := ItemLength(data[offset:])
				if err != nil {
					return 0, err
				}
				offset += chunkLen
			}
		}
		if arg > maxContainerSize {
			return 0, fmt.Errorf("string length %d exceeds cap", arg)
		}
		total := uint64(headSize) + arg
		if total > uint64(len(data)) {
			return 0, errTruncated
		}
		return int(total), nil
	case MajorArray, MajorMap:
		elems := arg
		if major == MajorMap {
			if !indef && arg > maxContainerSize/2 {
				return 0, fmt.Errorf("map size %d exceeds cap", arg)
			}
			elems = arg * 2
		} else if !indef && arg > maxContainerSize {
			return 0, fmt.Errorf("array size %d exceeds cap", arg)
		}
		offset := headSize
		if indef {
			for {
				if offset >= len(data) {
					return 0, errTruncated
				}
				if data[offset] == 0xff {
					return offset + 1, nil
				}
				itemLen, err := ItemLength(data[offset:])
				if err != nil {
					return 0, err
				}
				offset += itemLen
			}
		}
		for range elems {
			itemLen, err := ItemLength(data[offset:])
			if err != nil {
				return 0, err
			}
			offset += itemLen
		}
		return offset, nil
	case MajorTag:
		contentLen, err := ItemLength(data[headSize:])
		if err != nil {
			return 0, err
		}
		return headSize + contentLen, nil
	default: // MajorSimple
		return headSize, nil
	}
}

// RawPair is a raw key/value entry of a CBOR map
type RawPair struct {
	Key   []byte
	Value []byte
}

// SplitMap splits a CBOR map into its raw key/value pairs, preserving
// encounter order. Used where map keys are structured values (voters,
// redeemer keys) that cannot serve as Go map keys.
func SplitMap(data []byte) ([]RawPair, error) {
	major, arg, indef, headSize, err := itemHead(data)
	if err != nil {
		return nil, err
	}
	if major != MajorMap {
		return nil, fmt.Errorf("expected map, got major type %d", major)
	}
	if !indef && arg > maxContainerSize/2 {
		return nil, fmt.Errorf("map size %d exceeds cap", arg)
	}
	var pairs []RawPair
	offset := headSize
	for {
		if indef {
			if offset >= len(data) {
				return nil, errTruncated
			}
			if data[offset] == 0xff {
				break
			}
		} else if uint64(len(pairs)) == arg {
			break
		}
		keyLen, err := ItemLength(data[offset:])
		if err != nil {
			return nil, err
		}
		key := data[offset : offset+keyLen]
		offset += keyLen
		valueLen, err := ItemLength(data[offset:])
		if err != nil {
			return nil, err
		}
		value := data[offset : offset+valueLen]
		offset += valueLen
		pairs = append(pairs, RawPair{Key: key, Value: value})
	}
	return pairs, nil
}

// SplitArray splits a CBOR array into its raw items, preserving order
func SplitArray(data []byte) ([][]byte, error) {
	major, arg, indef, headSize, err := itemHead(data)
	if err != nil {
		return nil, err
	}
	if major != MajorArray {
		return nil, fmt.Errorf("expected array, got major type %d", major)
	}
	if !indef && arg > maxContainerSize {
		return nil, fmt.Errorf("array size %d exceeds cap", arg)
	}
	var items [][]byte
	offset := headSize
	for {
		if indef {
			if offset >= len(data) {
				return nil, errTruncated
			}
			if data[offset] == 0xff {
				break
			}
		} else if uint64(len(items)) == arg {
			break
		}
		itemLen, err := ItemLength(data[offset:])
		if err != nil {
			return nil, err
		}
		items = append(items, data[offset:offset+itemLen])
		offset += itemLen
	}
	return items, nil
}
