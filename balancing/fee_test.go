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

package balancing

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/gouroboros/cbor"
)

func rat(num, denom int64) *cbor.Rat {
	return &cbor.Rat{Rat: big.NewRat(num, denom)}
}

func TestVkWitnessCost(t *testing.T) {
	testDefs := []struct {
		signers  uint64
		expected uint64
	}{
		// 3 tag bytes + 1 header byte + 101 per witness, at 44/byte
		{0, (3 + 1) * 44},
		{1, (3 + 1 + 101) * 44},
		{5, (3 + 1 + 505) * 44},
		// 24 witnesses pushes the array header to 2 bytes
		{24, (3 + 2 + 24*101) * 44},
		{300, (3 + 3 + 300*101) * 44},
	}
	for _, testDef := range testDefs {
		result := VkWitnessCost(testDef.signers, 44)
		if result != testDef.expected {
			t.Errorf(
				"VkWitnessCost(%d) = %d, expected %d",
				testDef.signers,
				result,
				testDef.expected,
			)
		}
	}
}

func TestTieredRefScriptCost(t *testing.T) {
	testDefs := []struct {
		bytes    uint64
		expected uint64
	}{
		{0, 0},
		// one full tier at the base price
		{25600, 25600 * 15},
		// second tier costs 1.2x
		{51200, 25600*15 + 25600*18},
		// partial second tier is linear at the tier price
		{30000, 25600*15 + 4400*18},
	}
	for _, testDef := range testDefs {
		result := TieredRefScriptCost(testDef.bytes, rat(15, 1))
		if result != testDef.expected {
			t.Errorf(
				"TieredRefScriptCost(%d) = %d, expected %d",
				testDef.bytes,
				result,
				testDef.expected,
			)
		}
	}
}

func TestTieredRefScriptCostCeiling(t *testing.T) {
	// 3 bytes at 1/3 per byte is exactly 1; 4 bytes rounds up to 2
	if result := TieredRefScriptCost(3, rat(1, 3)); result != 1 {
		t.Errorf("TieredRefScriptCost(3, 1/3) = %d, expected 1", result)
	}
	if result := TieredRefScriptCost(4, rat(1, 3)); result != 2 {
		t.Errorf("TieredRefScriptCost(4, 1/3) = %d, expected 2", result)
	}
}

func TestTieredRefScriptCostNilPrice(t *testing.T) {
	if result := TieredRefScriptCost(1000, nil); result != 0 {
		t.Errorf("nil price produced cost %d", result)
	}
}

func TestCollateralAmount(t *testing.T) {
	if result := collateralAmount(0, 150); result != defaultCollateralAmount {
		t.Errorf("zero fee: %d", result)
	}
	if result := collateralAmount(175000, 0); result != defaultCollateralAmount {
		t.Errorf("zero percentage: %d", result)
	}
	if result := collateralAmount(175000, 150); result != 262500 {
		t.Errorf("collateralAmount(175000, 150) = %d, expected 262500", result)
	}
	// rounds up
	if result := collateralAmount(175001, 150); result != 262502 {
		t.Errorf("collateralAmount(175001, 150) = %d, expected 262502", result)
	}
}
