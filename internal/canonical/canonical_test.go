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
	"bytes"
	"encoding/hex"
	"testing"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	decoded, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex in test: %v", err)
	}
	return decoded
}

func TestEncodeHeadShortestForm(t *testing.T) {
	testDefs := []struct {
		value    uint64
		expected string
	}{
		{0, "00"},
		{23, "17"},
		{24, "1818"},
		{255, "18ff"},
		{256, "190100"},
		{65535, "19ffff"},
		{65536, "1a00010000"},
		{155381, "1a00025ef5"},
		{4294967295, "1affffffff"},
		{4294967296, "1b0000000100000000"},
	}
	for _, testDef := range testDefs {
		result := EncodeUint(testDef.value)
		if !bytes.Equal(result, hexBytes(t, testDef.expected)) {
			t.Errorf(
				"EncodeUint(%d) = %x, expected %s",
				testDef.value,
				result,
				testDef.expected,
			)
		}
	}
}

func TestEncodeInt(t *testing.T) {
	testDefs := []struct {
		value    int64
		expected string
	}{
		{0, "00"},
		{10, "0a"},
		{-1, "20"},
		{-24, "37"},
		{-25, "3818"},
		{-500, "3901f3"},
	}
	for _, testDef := range testDefs {
		result := EncodeInt(testDef.value)
		if !bytes.Equal(result, hexBytes(t, testDef.expected)) {
			t.Errorf(
				"EncodeInt(%d) = %x, expected %s",
				testDef.value,
				result,
				testDef.expected,
			)
		}
	}
}

func TestEncodeMapSortsByEncodedKeyBytes(t *testing.T) {
	// key 10 encodes as 0x0a, key 2 as 0x02; byte order puts 2 first
	result := EncodeMap([]Pair{
		{Key: EncodeUint(10), Value: EncodeUint(1)},
		{Key: EncodeUint(2), Value: EncodeUint(2)},
	})
	expected := hexBytes(t, "a202020a01")
	if !bytes.Equal(result, expected) {
		t.Fatalf("EncodeMap = %x, expected %x", result, expected)
	}
}

func TestEncodeMapByteStringKeys(t *testing.T) {
	// shorter byte strings sort first because their heads encode the
	// length
	longKey := EncodeBytes([]byte{0x00, 0x01})
	shortKey := EncodeBytes([]byte{0xff})
	result := EncodeMap([]Pair{
		{Key: longKey, Value: EncodeUint(1)},
		{Key: shortKey, Value: EncodeUint(2)},
	})
	expected := hexBytes(t, "a241ff0242000101")
	if !bytes.Equal(result, expected) {
		t.Fatalf("EncodeMap = %x, expected %x", result, expected)
	}
}

func TestEncodeSetTag(t *testing.T) {
	items := [][]byte{EncodeUint(1), EncodeUint(2)}
	tagged := EncodeSet(items, true)
	if !bytes.Equal(tagged, hexBytes(t, "d90102820102")) {
		t.Fatalf("tagged set = %x", tagged)
	}
	bare := EncodeSet(items, false)
	if !bytes.Equal(bare, hexBytes(t, "820102")) {
		t.Fatalf("bare set = %x", bare)
	}
	stripped, found := StripSetTag(tagged)
	if !found || !bytes.Equal(stripped, bare) {
		t.Fatalf("StripSetTag mismatch: %x found=%v", stripped, found)
	}
	if _, found := StripSetTag(bare); found {
		t.Fatal("StripSetTag reported a tag on a bare array")
	}
}

func TestItemLength(t *testing.T) {
	testDefs := []struct {
		data     string
		expected int
	}{
		{"00", 1},
		{"1818", 2},
		{"43010203", 4},
		{"820102", 3},
		{"a10102", 3},
		{"d9010281182a", 6},
		{"8201820304", 5},
		{"9f0102ff", 4},     // indefinite array
		{"5f42010241ffff", 7}, // indefinite bytes
	}
	for _, testDef := range testDefs {
		length, err := ItemLength(hexBytes(t, testDef.data))
		if err != nil {
			t.Errorf("ItemLength(%s) error: %v", testDef.data, err)
			continue
		}
		if length != testDef.expected {
			t.Errorf(
				"ItemLength(%s) = %d, expected %d",
				testDef.data,
				length,
				testDef.expected,
			)
		}
	}
}

func TestItemLengthTruncated(t *testing.T) {
	for _, data := range []string{"18", "4301", "82", "8201", "a101"} {
		if _, err := ItemLength(hexBytes(t, data)); err == nil {
			t.Errorf("ItemLength(%s) accepted truncated input", data)
		}
	}
}

func TestSplitMap(t *testing.T) {
	pairs, err := SplitMap(hexBytes(t, "a20102820304820506"))
	if err != nil {
		t.Fatalf("SplitMap error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if !bytes.Equal(pairs[0].Key, hexBytes(t, "01")) ||
		!bytes.Equal(pairs[0].Value, hexBytes(t, "02")) {
		t.Errorf("pair 0 = (%x, %x)", pairs[0].Key, pairs[0].Value)
	}
	if !bytes.Equal(pairs[1].Key, hexBytes(t, "820304")) ||
		!bytes.Equal(pairs[1].Value, hexBytes(t, "820506")) {
		t.Errorf("pair 1 = (%x, %x)", pairs[1].Key, pairs[1].Value)
	}
}

func TestSplitMapIndefinite(t *testing.T) {
	pairs, err := SplitMap(hexBytes(t, "bf0102ff"))
	if err != nil {
		t.Fatalf("SplitMap error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
}

func TestSplitArray(t *testing.T) {
	items, err := SplitArray(hexBytes(t, "83014302030482f500"))
	if err != nil {
		t.Fatalf("SplitArray error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if !bytes.Equal(items[1], hexBytes(t, "43020304")) {
		t.Errorf("item 1 = %x", items[1])
	}
	if !bytes.Equal(items[2], hexBytes(t, "82f500")) {
		t.Errorf("item 2 = %x", items[2])
	}
}

func TestSplitArrayRejectsNonArray(t *testing.T) {
	if _, err := SplitArray(hexBytes(t, "a10102")); err == nil {
		t.Fatal("SplitArray accepted a map")
	}
}
