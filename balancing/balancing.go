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
	"github.com/blinklabs-io/txcraft/evaluate"
	"github.com/blinklabs-io/txcraft/ledger"
	"github.com/blinklabs-io/txcraft/selection"
)

// InputRedeemerMap tracks which spending redeemer belongs to which input
// so redeemer indices can be re-pointed after each selection round. The
// value is the redeemer's position in the witness set's redeemer list.
type InputRedeemerMap map[ledger.TransactionInput]int

// BalanceOptions bundles the collaborators and inputs of a balancing call
type BalanceOptions struct {
	// ForeignSignatureCount is the number of witnesses the caller will
	// add out-of-band, beyond those implied by the transaction itself
	ForeignSignatureCount uint64
	Params                *ledger.ProtocolParameters
	// ReferenceInputs resolve the body's reference inputs for the
	// reference-script fee surcharge
	ReferenceInputs []ledger.Utxo
	// PreSelected UTxOs are always included in the input selection
	PreSelected []ledger.Utxo
	// InputRedeemers re-points spending redeemer indices after selection
	InputRedeemers InputRedeemerMap
	// Available UTxOs feed the coin selector
	Available     []ledger.Utxo
	Selector      selection.CoinSelector
	ChangeAddress *lcommon.Address
	// AvailableCollateral and CollateralChangeAddress drive the
	// collateral sub-loop for scripted transactions
	AvailableCollateral     []ledger.Utxo
	CollateralChangeAddress *lcommon.Address
	Evaluator               evaluate.TxEvaluator
}

// sumOutputs coalesces all output values into one total
func sumOutputs(outputs []ledger.TransactionOutput) (ledger.Value, error) {
	total := ledger.ZeroValue()
	for i := range outputs {
		sum, err := total.Add(outputs[i].Amount)
		if err != nil {
			return ledger.Value{}, err
		}
		total = sum
	}
	return total, nil
}

// sumResolvedInputs coalesces the values of the given inputs, resolving
// each through the UTxO list
func sumResolvedInputs(
	inputs []ledger.TransactionInput,
	resolved []ledger.Utxo,
) (ledger.Value, error) {
	total := ledger.ZeroValue()
	for _, input := range inputs {
		utxo, err := ledger.FindUtxo(resolved, input)
		if err != nil {
			return ledger.Value{}, err
		}
		sum, err := total.Add(utxo.Output.Amount)
		if err != nil {
			return ledger.Value{}, err
		}
		total = sum
	}
	return total, nil
}

// implicitValue builds the Value form of the implicit coin flow:
// (withdrawals + reclaims) - (deposits + fee + padding), with the mint
// field riding along as assets
func implicitValue(
	implicit ImplicitCoin,
	mint ledger.MultiAsset,
	fee uint64,
	changePadding uint64,
) ledger.Value {
	coin := int64(implicit.Withdrawals) + int64(implicit.ReclaimDeposits) -
		int64(implicit.Deposits) - int64(fee) - int64(changePadding)
	return ledger.NewValue(coin, mint.Clone())
}

// resetBody restores the caller's pristine outputs and clears the
// selection-dependent fields before another balancing iteration
func resetBody(tx *ledger.Transaction, pristineOutputs []ledger.TransactionOutput) {
	outputs := make([]ledger.TransactionOutput, len(pristineOutputs))
	copy(outputs, pristineOutputs)
	tx.Body.SetOutputs(outputs)
	tx.Body.SetInputs(nil)
	tx.Body.SetCollateral(nil)
	tx.Body.SetCollateralReturn(nil)
	tx.Body.SetTotalCollateral(nil)
	tx.Invalidate()
}

// BalanceTransaction mutates the given transaction into a balanced,
// well-formed one: it selects inputs through the coin selector, appends a
// change output, arranges collateral for scripted transactions, prices
// script execution through the evaluator, and re-estimates the fee until
// the estimate stops growing. On success the transaction satisfies the
// balance equation exactly.
//
// Each iteration either terminates or strictly increases the fee or the
// change padding; both are bounded, so the loop terminates.
func BalanceTransaction(tx *ledger.Transaction, opts BalanceOptions) error {
	if tx == nil {
		return fmt.Errorf("transaction: %w", ledger.ErrPointerNull)
	}
	if opts.Params == nil {
		return fmt.Errorf("protocol parameters: %w", ledger.ErrPointerNull)
	}
	if opts.Selector == nil {
		return fmt.Errorf("coin selector: %w", ledger.ErrPointerNull)
	}
	if opts.ChangeAddress == nil {
		return fmt.Errorf("change address: %w", ledger.ErrPointerNull)
	}
	implicit, err := ComputeImplicitCoin(tx, opts.Params)
	if err != nil {
		return err
	}
	pristineOutputs := make([]ledger.TransactionOutput, len(tx.Body.Outputs))
	copy(pristineOutputs, tx.Body.Outputs)

	fee := tx.Body.Fee
	var changePadding uint64
	for {
		// sizing
		totalOut, err := sumOutputs(tx.Body.Outputs)
		if err != nil {
			return err
		}
		if err := SetCollateralOutput(
			tx,
			opts.Params,
			opts.AvailableCollateral,
			opts.CollateralChangeAddress,
		); err != nil {
			return err
		}
		requiredIn, err := totalOut.Subtract(
			implicitValue(implicit, tx.Body.Mint, fee, changePadding),
		)
		if err != nil {
			return err
		}

		// input selection
		chosen, _, err := opts.Selector.Select(opts.PreSelected, opts.Available, requiredIn)
		if err != nil {
			return err
		}
		if len(chosen) == 0 {
			return fmt.Errorf(
				"selection produced no inputs: %w",
				ledger.ErrBalanceInsufficient,
			)
		}
		inputs := make([]ledger.TransactionInput, 0, len(chosen))
		for _, utxo := range chosen {
			inputs = append(inputs, utxo.Input)
		}
		tx.Body.SetInputs(inputs)
		tx.Invalidate()
		if opts.InputRedeemers != nil {
			for position, input := range inputs {
				if redeemerIdx, ok := opts.InputRedeemers[input]; ok {
					if redeemerIdx < 0 ||
						redeemerIdx >= len(tx.WitnessSet.Redeemers.Items) {
						return fmt.Errorf(
							"redeemer position %d out of range: %w",
							redeemerIdx,
							ledger.ErrElementNotFound,
						)
					}
					tx.WitnessSet.Redeemers.Items[redeemerIdx].Index = uint32(position)
					tx.WitnessSet.Redeemers.Invalidate()
					tx.WitnessSet.Invalidate()
				}
			}
		}

		// change
		selectedValue, err := sumResolvedInputs(inputs, chosen)
		if err != nil {
			return err
		}
		change, err := selectedValue.Subtract(requiredIn)
		if err != nil {
			return err
		}
		if err := change.AddCoin(int64(changePadding)); err != nil {
			return err
		}
		if !change.IsZero() {
			changeOutput := ledger.NewTransactionOutput(*opts.ChangeAddress, change)
			minCoin, err := ledger.MinAdaRequired(&changeOutput, opts.Params.AdaPerUtxoByte)
			if err != nil {
				return err
			}
			if change.Coin < int64(minCoin) {
				changePadding += minCoin - uint64(max(change.Coin, 0))
				resetBody(tx, pristineOutputs)
				continue
			}
			tx.Body.AppendOutput(changeOutput)
			tx.Invalidate()
		}

		// script evaluation
		resolvedInputs := make([]ledger.Utxo, 0,
			len(chosen)+len(opts.PreSelected)+len(opts.AvailableCollateral))
		resolvedInputs = append(resolvedInputs, chosen...)
		resolvedInputs = append(resolvedInputs, opts.PreSelected...)
		resolvedInputs = append(resolvedInputs, opts.AvailableCollateral...)
		if tx.WitnessSet.HasRedeemers() {
			if opts.Evaluator == nil {
				return fmt.Errorf(
					"scripted transaction requires an evaluator: %w",
					ledger.ErrPointerNull,
				)
			}
			evaluated, err := opts.Evaluator.Evaluate(tx, chosen)
			if err != nil {
				return err
			}
			for _, result := range evaluated {
				tx.WitnessSet.Redeemers.SetExUnits(result.Tag, result.Index, result.ExUnits)
			}
			tx.WitnessSet.Invalidate()
			tx.Invalidate()
		}

		// fee re-estimation, anticipating witness cost
		uniqueSigners, err := UniqueRequiredSigners(tx, resolvedInputs)
		if err != nil {
			return err
		}
		computedFee, err := ComputeTransactionFee(tx, opts.ReferenceInputs, opts.Params)
		if err != nil {
			return err
		}
		signerCount := opts.ForeignSignatureCount + uint64(len(uniqueSigners))
		computedFee += VkWitnessCost(signerCount, opts.Params.MinFeeA)
		if computedFee > fee {
			fee = computedFee
			tx.Body.SetFee(fee)
			resetBody(tx, pristineOutputs)
			continue
		}

		// verification
		balanced, err := IsTransactionBalanced(tx, resolvedInputs, opts.Params)
		if err != nil {
			return err
		}
		if !balanced {
			return fmt.Errorf(
				"transaction does not balance after selection: %w",
				ledger.ErrBalanceInsufficient,
			)
		}
		return nil
	}
}

// IsTransactionBalanced independently checks the balance equation:
// inputs + withdrawals + reclaims + mint == outputs + fee + deposits,
// under multi-asset Value equality. It recomputes every term from the
// transaction itself, catching bookkeeping errors in the balancing loop.
func IsTransactionBalanced(
	tx *ledger.Transaction,
	resolvedInputs []ledger.Utxo,
	params *ledger.ProtocolParameters,
) (bool, error) {
	if tx == nil || params == nil || resolvedInputs == nil {
		return false, fmt.Errorf(
			"transaction, resolved inputs, and parameters are required: %w",
			ledger.ErrPointerNull,
		)
	}
	implicit, err := ComputeImplicitCoin(tx, params)
	if err != nil {
		return false, err
	}
	totalIn, err := sumResolvedInputs(tx.Body.Inputs, resolvedInputs)
	if err != nil {
		return false, err
	}
	totalOut, err := sumOutputs(tx.Body.Outputs)
	if err != nil {
		return false, err
	}
	diff, err := totalOut.Subtract(totalIn)
	if err != nil {
		return false, err
	}
	net, err := diff.Subtract(implicitValue(implicit, tx.Body.Mint, tx.Body.Fee, 0))
	if err != nil {
		return false, err
	}
	return net.IsZero(), nil
}
