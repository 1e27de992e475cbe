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

package selection

import (
	"fmt"
	"sort"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
)

// LargeFirst selects UTxOs largest-first: asset requirements are covered
// by the UTxOs holding the most of each missing asset, then the coin
// requirement by the UTxOs holding the most lovelace
type LargeFirst struct{}

// NewLargeFirst creates a Large-First coin selector
func NewLargeFirst() *LargeFirst {
	return &LargeFirst{}
}

// Select implements CoinSelector
func (s *LargeFirst) Select(
	preSelected []ledger.Utxo,
	available []ledger.Utxo,
	target ledger.Value,
) ([]ledger.Utxo, []ledger.Utxo, error) {
	selection := make([]ledger.Utxo, 0, len(preSelected))
	selection = append(selection, preSelected...)
	accumulated := ledger.ZeroValue()
	for _, utxo := range preSelected {
		sum, err := accumulated.Add(utxo.Output.Amount)
		if err != nil {
			return nil, nil, err
		}
		accumulated = sum
	}
	pool := make([]ledger.Utxo, 0, len(available))
	pool = append(pool, available...)

	// cover each required asset, largest holder first
	for _, policyId := range target.Assets.Policies() {
		for _, name := range target.Assets.AssetNames(policyId) {
			required := target.Assets.Quantity(policyId, name)
			if required <= 0 {
				continue
			}
			for accumulated.Assets.Quantity(policyId, name) < required {
				idx := largestAssetHolder(pool, policyId, name)
				if idx < 0 {
					return nil, nil, fmt.Errorf(
						"insufficient asset %s in available UTxOs: %w",
						policyId.String(),
						ledger.ErrBalanceInsufficient,
					)
				}
				var err error
				selection, pool, accumulated, err = take(selection, pool, accumulated, idx)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	}

	// cover the coin requirement, largest first
	if accumulated.Coin < target.Coin {
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Output.Amount.Coin > pool[j].Output.Amount.Coin
		})
		for accumulated.Coin < target.Coin {
			if len(pool) == 0 {
				return nil, nil, fmt.Errorf(
					"insufficient lovelace in available UTxOs (have %d, need %d): %w",
					accumulated.Coin,
					target.Coin,
					ledger.ErrBalanceInsufficient,
				)
			}
			var err error
			selection, pool, accumulated, err = take(selection, pool, accumulated, 0)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return selection, pool, nil
}

func take(
	selection []ledger.Utxo,
	pool []ledger.Utxo,
	accumulated ledger.Value,
	idx int,
) ([]ledger.Utxo, []ledger.Utxo, ledger.Value, error) {
	utxo := pool[idx]
	sum, err := accumulated.Add(utxo.Output.Amount)
	if err != nil {
		return nil, nil, ledger.Value{}, err
	}
	selection = append(selection, utxo)
	pool = append(pool[:idx], pool[idx+1:]...)
	return selection, pool, sum, nil
}

func largestAssetHolder(
	pool []ledger.Utxo,
	policyId lcommon.Blake2b224,
	name []byte,
) int {
	best := -1
	var bestQty int64
	for i, utxo := range pool {
		qty := utxo.Output.Amount.Assets.Quantity(policyId, name)
		if qty > 0 && (best < 0 || qty > bestQty) {
			best = i
			bestQty = qty
		}
	}
	return best
}
