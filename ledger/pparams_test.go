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

package ledger_test

import (
	"testing"

	"github.com/blinklabs-io/txcraft/ledger"
)

func TestMainnetProtocolParameters(t *testing.T) {
	params := ledger.NewMainnetProtocolParameters()
	if params.MinFeeA != 44 || params.MinFeeB != 155381 {
		t.Error("unexpected min fee parameters")
	}
	if params.AdaPerUtxoByte != 4310 {
		t.Error("unexpected ada-per-utxo-byte")
	}
	if params.CollateralPercentage != 150 {
		t.Error("unexpected collateral percentage")
	}
	if len(params.CostModels) != 3 {
		t.Errorf("expected 3 cost models, got %d", len(params.CostModels))
	}
	if len(params.CostModels[0]) != 166 ||
		len(params.CostModels[1]) != 175 ||
		len(params.CostModels[2]) != 223 {
		t.Error("cost model sizes do not match the Plutus versions")
	}
}

func TestProtocolParametersCborRoundTrip(t *testing.T) {
	params := ledger.NewMainnetProtocolParameters()
	encoded, err := params.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	var decoded ledger.ProtocolParameters
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if decoded.MinFeeA != params.MinFeeA ||
		decoded.MinFeeB != params.MinFeeB ||
		decoded.AdaPerUtxoByte != params.AdaPerUtxoByte ||
		decoded.CollateralPercentage != params.CollateralPercentage ||
		decoded.GovActionDeposit != params.GovActionDeposit {
		t.Error("round trip lost scalar fields")
	}
	if decoded.ExecutionCosts == nil ||
		decoded.ExecutionCosts.MemPrice == nil ||
		decoded.ExecutionCosts.MemPrice.Rat.Cmp(params.ExecutionCosts.MemPrice.Rat) != 0 {
		t.Error("round trip lost execution prices")
	}
	if len(decoded.CostModels) != len(params.CostModels) {
		t.Error("round trip lost cost models")
	}
}

func TestErrorCodeNames(t *testing.T) {
	testDefs := []struct {
		code     ledger.ErrorCode
		expected string
	}{
		{ledger.CodeSuccess, "Success"},
		{ledger.CodeBalanceInsufficient, "BalanceInsufficient"},
		{ledger.CodeArithmeticOverflow, "ArithmeticOverflow"},
		{ledger.CodeElementNotFound, "ElementNotFound"},
		{ledger.CodeInvalidCborMapKey, "InvalidCborMapKey"},
		{ledger.CodeInvalidBip32DerivationIndex, "InvalidBip32DerivationIndex"},
	}
	for _, testDef := range testDefs {
		if testDef.code.String() != testDef.expected {
			t.Errorf("code %d = %q, expected %q",
				testDef.code, testDef.code.String(), testDef.expected)
		}
	}
}

func TestCodedErrorMessageBounded(t *testing.T) {
	long := make([]byte, 1024)
	for i := range long {
		long[i] = 'x'
	}
	err := ledger.NewCodedError(ledger.CodeDecoding, string(long))
	if len(err.Message) > 256 {
		t.Errorf("message length %d exceeds bound", len(err.Message))
	}
}
