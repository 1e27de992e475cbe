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

// Package evaluate defines the script-evaluation interface consumed by
// the balancer. Evaluators are synchronous; wrapping a remote evaluation
// service is the caller's concern.
package evaluate

import (
	"fmt"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
)

// RedeemerKey identifies a redeemer by its tag and index
type RedeemerKey struct {
	Tag   ledger.RedeemerTag
	Index uint32
}

// TxEvaluator computes execution budgets for a transaction's redeemers.
// The resolved inputs cover the candidate input set so redeemer indices
// are stable during balancing.
type TxEvaluator interface {
	Evaluate(
		tx *ledger.Transaction,
		resolvedInputs []ledger.Utxo,
	) ([]ledger.Redeemer, error)
}

// Static is an evaluator returning caller-fixed budgets per redeemer key.
// It serves offline balancing where budgets are known ahead of time, and
// tests.
type Static struct {
	Budgets map[RedeemerKey]lcommon.ExUnits
	// Default applies to redeemers without an explicit budget entry when
	// UseDefault is set
	Default    lcommon.ExUnits
	UseDefault bool
}

// NewStatic creates a static evaluator from a budget table
func NewStatic(budgets map[RedeemerKey]lcommon.ExUnits) *Static {
	return &Static{Budgets: budgets}
}

// Evaluate implements TxEvaluator
func (s *Static) Evaluate(
	tx *ledger.Transaction,
	resolvedInputs []ledger.Utxo,
) ([]ledger.Redeemer, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction: %w", ledger.ErrPointerNull)
	}
	results := make([]ledger.Redeemer, 0, len(tx.WitnessSet.Redeemers.Items))
	for _, redeemer := range tx.WitnessSet.Redeemers.Items {
		key := RedeemerKey{Tag: redeemer.Tag, Index: redeemer.Index}
		budget, ok := s.Budgets[key]
		if !ok {
			if !s.UseDefault {
				return nil, fmt.Errorf(
					"no budget for redeemer tag=%d index=%d: %w",
					redeemer.Tag,
					redeemer.Index,
					ledger.ErrElementNotFound,
				)
			}
			budget = s.Default
		}
		result := redeemer
		result.ExUnits = budget
		results = append(results, result)
	}
	return results, nil
}
