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

package balancing_test

import (
	"testing"

	"github.com/blinklabs-io/txcraft/balancing"
	"github.com/blinklabs-io/txcraft/ledger"
	"github.com/stretchr/testify/require"
)

func TestSetCollateralOutputNoRedeemersIsNoop(t *testing.T) {
	walletAddr := addressOf(t, ledger.AddressTypeEnterpriseKey, 0x0a, 0)
	collateral := []ledger.Utxo{utxoAt(t, 0x01, 0, walletAddr, 20_000_000)}
	tx := ledger.NewTransaction()
	err := balancing.SetCollateralOutput(tx, testParams(), collateral, &walletAddr)
	require.NoError(t, err)
	require.Empty(t, tx.Body.Collateral)
	require.Nil(t, tx.Body.TotalCollateral)
}

func TestSetCollateralOutputNoPoolIsNoop(t *testing.T) {
	walletAddr := addressOf(t, ledger.AddressTypeEnterpriseKey, 0x0a, 0)
	tx := ledger.NewTransaction()
	tx.WitnessSet.SetRedeemers(ledger.Redeemers{
		Items: []ledger.Redeemer{
			{Tag: ledger.RedeemerTagSpend, Index: 0, Data: []byte{0x04}},
		},
	})
	err := balancing.SetCollateralOutput(tx, testParams(), nil, &walletAddr)
	require.NoError(t, err)
	require.Empty(t, tx.Body.Collateral)
}

func TestSetCollateralOutputDefaultAmount(t *testing.T) {
	walletAddr := addressOf(t, ledger.AddressTypeEnterpriseKey, 0x0a, 0)
	collateral := []ledger.Utxo{utxoAt(t, 0x01, 0, walletAddr, 20_000_000)}
	tx := ledger.NewTransaction()
	tx.WitnessSet.SetRedeemers(ledger.Redeemers{
		Items: []ledger.Redeemer{
			{Tag: ledger.RedeemerTagSpend, Index: 0, Data: []byte{0x04}},
		},
	})
	// fee is still zero, so the ledger default target applies
	err := balancing.SetCollateralOutput(tx, testParams(), collateral, &walletAddr)
	require.NoError(t, err)
	require.Len(t, tx.Body.Collateral, 1)
	require.NotNil(t, tx.Body.TotalCollateral)
	require.Equal(t, uint64(5_000_000), *tx.Body.TotalCollateral)
	require.NotNil(t, tx.Body.CollateralReturn)
	require.Equal(t, int64(15_000_000), tx.Body.CollateralReturn.Amount.Coin)
}

func TestSetCollateralOutputExactCoverage(t *testing.T) {
	walletAddr := addressOf(t, ledger.AddressTypeEnterpriseKey, 0x0a, 0)
	// UTxO matches the default target exactly: no return output needed
	collateral := []ledger.Utxo{utxoAt(t, 0x01, 0, walletAddr, 5_000_000)}
	tx := ledger.NewTransaction()
	tx.WitnessSet.SetRedeemers(ledger.Redeemers{
		Items: []ledger.Redeemer{
			{Tag: ledger.RedeemerTagSpend, Index: 0, Data: []byte{0x04}},
		},
	})
	err := balancing.SetCollateralOutput(tx, testParams(), collateral, &walletAddr)
	require.NoError(t, err)
	require.Len(t, tx.Body.Collateral, 1)
	require.Nil(t, tx.Body.CollateralReturn)
	require.Equal(t, uint64(5_000_000), *tx.Body.TotalCollateral)
}

func TestSetCollateralOutputInsufficientPool(t *testing.T) {
	walletAddr := addressOf(t, ledger.AddressTypeEnterpriseKey, 0x0a, 0)
	collateral := []ledger.Utxo{utxoAt(t, 0x01, 0, walletAddr, 1_000_000)}
	tx := ledger.NewTransaction()
	tx.WitnessSet.SetRedeemers(ledger.Redeemers{
		Items: []ledger.Redeemer{
			{Tag: ledger.RedeemerTagSpend, Index: 0, Data: []byte{0x04}},
		},
	})
	err := balancing.SetCollateralOutput(tx, testParams(), collateral, &walletAddr)
	require.ErrorIs(t, err, ledger.ErrBalanceInsufficient)
}
