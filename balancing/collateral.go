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

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
	"github.com/blinklabs-io/txcraft/selection"
)

// defaultCollateralAmount is the fallback collateral target when the fee
// or the collateral percentage is still zero
const defaultCollateralAmount = 5000000

// collateralAmount computes the required collateral for a fee, rounding
// the percentage up
func collateralAmount(fee uint64, collateralPercentage uint64) uint64 {
	if fee == 0 || collateralPercentage == 0 {
		return defaultCollateralAmount
	}
	return (fee*collateralPercentage + 99) / 100
}

// SetCollateralOutput selects collateral for a scripted transaction and
// installs the collateral inputs, total-collateral, and (when the
// selection overshoots) a collateral-return output on the body. It is a
// no-op when the transaction has no redeemers, no collateral pool is
// supplied, or no collateral change address is given.
//
// Collateral is selected in coin only; non-ada assets riding on selected
// UTxOs are routed back through the collateral-return output. When the
// return output would fall below its minimum coin, the target is padded
// and selection retried; each retry strictly increases the padding, so
// the loop is bounded by the finite collateral pool.
func SetCollateralOutput(
	tx *ledger.Transaction,
	params *ledger.ProtocolParameters,
	availableCollateral []ledger.Utxo,
	collateralChangeAddr *lcommon.Address,
) error {
	if tx == nil || params == nil {
		return fmt.Errorf("transaction and parameters are required: %w", ledger.ErrPointerNull)
	}
	if !tx.WitnessSet.HasRedeemers() {
		return nil
	}
	if len(availableCollateral) == 0 || collateralChangeAddr == nil {
		return nil
	}
	target := collateralAmount(tx.Body.Fee, params.CollateralPercentage)
	selector := selection.NewLargeFirst()
	var changePadding uint64
	for {
		coinTarget := ledger.NewValueFromCoin(int64(target + changePadding))
		chosen, _, err := selector.Select(nil, availableCollateral, coinTarget)
		if err != nil {
			return err
		}
		selectedValue := ledger.ZeroValue()
		for _, utxo := range chosen {
			selectedValue, err = selectedValue.Add(utxo.Output.Amount)
			if err != nil {
				return err
			}
		}
		changeValue, err := selectedValue.Subtract(ledger.NewValueFromCoin(int64(target)))
		if err != nil {
			return err
		}
		var changeOutput *ledger.TransactionOutput
		if !changeValue.IsZero() {
			candidate := ledger.NewTransactionOutput(*collateralChangeAddr, changeValue)
			minCoin, err := ledger.MinAdaRequired(&candidate, params.AdaPerUtxoByte)
			if err != nil {
				return err
			}
			if changeValue.Coin < int64(minCoin) {
				changePadding += minCoin - uint64(max(changeValue.Coin, 0))
				continue
			}
			changeOutput = &candidate
		}
		collateralInputs := make([]ledger.TransactionInput, 0, len(chosen))
		for _, utxo := range chosen {
			collateralInputs = append(collateralInputs, utxo.Input)
		}
		total := target
		tx.Body.SetCollateral(collateralInputs)
		tx.Body.SetCollateralReturn(changeOutput)
		tx.Body.SetTotalCollateral(&total)
		tx.Invalidate()
		return nil
	}
}
