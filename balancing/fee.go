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
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/txcraft/ledger"
)

// refScriptCostStride is the byte range over which the reference-script
// cost multiplier applies once (the ledger RefScriptCostStride rule)
const refScriptCostStride = 25600

// refScriptCostMultiplier is the per-stride cost growth factor (1.2)
var refScriptCostMultiplier = big.NewRat(12, 10)

// ceilRat rounds a non-negative rational up to the nearest integer
func ceilRat(r *big.Rat) uint64 {
	quotient := new(big.Int)
	remainder := new(big.Int)
	quotient.QuoRem(r.Num(), r.Denom(), remainder)
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient.Uint64()
}

// TieredRefScriptCost computes the reference-script fee surcharge: the
// per-byte cost grows by the multiplier for every full stride of script
// bytes and applies linearly inside the current stride
func TieredRefScriptCost(scriptBytes uint64, costPerByte *cbor.Rat) uint64 {
	if scriptBytes == 0 || costPerByte == nil || costPerByte.Rat == nil ||
		costPerByte.Rat.Sign() <= 0 {
		return 0
	}
	total := new(big.Rat)
	tierPrice := new(big.Rat).Set(costPerByte.Rat)
	remaining := scriptBytes
	for remaining > 0 {
		chunk := remaining
		if chunk > refScriptCostStride {
			chunk = refScriptCostStride
		}
		chunkCost := new(big.Rat).Mul(tierPrice, new(big.Rat).SetUint64(chunk))
		total.Add(total, chunkCost)
		tierPrice.Mul(tierPrice, refScriptCostMultiplier)
		remaining -= chunk
	}
	return ceilRat(total)
}

// referenceScriptBytes sums the sizes of scripts reachable through the
// reference inputs
func referenceScriptBytes(referenceInputs []ledger.Utxo) uint64 {
	var total uint64
	for i := range referenceInputs {
		total += uint64(len(referenceInputs[i].Output.ScriptRef))
	}
	return total
}

// executionCost prices the transaction's redeemer budgets with ceiling
// rounding on the rational total
func executionCost(tx *ledger.Transaction, params *ledger.ProtocolParameters) uint64 {
	if params.ExecutionCosts == nil || len(tx.WitnessSet.Redeemers.Items) == 0 {
		return 0
	}
	memPrice := params.ExecutionCosts.MemPrice
	stepPrice := params.ExecutionCosts.StepPrice
	total := new(big.Rat)
	for _, redeemer := range tx.WitnessSet.Redeemers.Items {
		if memPrice != nil && memPrice.Rat != nil {
			cost := new(big.Rat).Mul(
				memPrice.Rat,
				new(big.Rat).SetUint64(redeemer.ExUnits.Memory),
			)
			total.Add(total, cost)
		}
		if stepPrice != nil && stepPrice.Rat != nil {
			cost := new(big.Rat).Mul(
				stepPrice.Rat,
				new(big.Rat).SetUint64(redeemer.ExUnits.Steps),
			)
			total.Add(total, cost)
		}
	}
	return ceilRat(total)
}

// ComputeTransactionFee computes the minimum ledger fee for the
// transaction as currently serialized: size-based fee plus the
// reference-script surcharge plus the execution-unit cost. The
// anticipated verification-key witness cost is added separately by the
// balancer via VkWitnessCost.
func ComputeTransactionFee(
	tx *ledger.Transaction,
	referenceInputs []ledger.Utxo,
	params *ledger.ProtocolParameters,
) (uint64, error) {
	if tx == nil || params == nil {
		return 0, fmt.Errorf("transaction and parameters are required: %w", ledger.ErrPointerNull)
	}
	encoded, err := tx.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	fee := uint64(len(encoded))*params.MinFeeA + params.MinFeeB
	fee += TieredRefScriptCost(
		referenceScriptBytes(referenceInputs),
		params.MinFeeRefScriptCostPerByte,
	)
	fee += executionCost(tx, params)
	return fee, nil
}

// cborArrayHeaderSize returns the head size in bytes for an array of the
// given element count
func cborArrayHeaderSize(elementCount uint64) uint64 {
	switch {
	case elementCount <= 23:
		return 1
	case elementCount <= 0xff:
		return 2
	case elementCount <= 0xffff:
		return 3
	default:
		return 5
	}
}

// vkWitnessBytesPerEntry is the serialized size of one vkey witness: a
// 32-byte key and 64-byte signature plus 5 bytes of envelope
const vkWitnessBytesPerEntry = 101

// VkWitnessCost estimates the fee contribution of the verification-key
// witnesses that signing will add: 3 bytes for the witness-set field tag,
// the list header, and 101 bytes per witness, priced at the minimum fee
// coefficient
func VkWitnessCost(signerCount uint64, minFeeCoefficient uint64) uint64 {
	witnessSetSize := 3 + cborArrayHeaderSize(signerCount) +
		vkWitnessBytesPerEntry*signerCount
	return witnessSetSize * minFeeCoefficient
}
