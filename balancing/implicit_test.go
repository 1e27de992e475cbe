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
	"bytes"
	"testing"

	"github.com/blinklabs-io/txcraft/balancing"
	"github.com/blinklabs-io/txcraft/ledger"
	"github.com/stretchr/testify/require"
)

func testParams() *ledger.ProtocolParameters {
	return &ledger.ProtocolParameters{
		MinFeeA:              44,
		MinFeeB:              155381,
		MaxTxSize:            16384,
		KeyDeposit:           2_000_000,
		PoolDeposit:          500_000_000,
		DRepDeposit:          500_000_000,
		AdaPerUtxoByte:       4310,
		CollateralPercentage: 150,
		MaxCollateralInputs:  3,
	}
}

func TestComputeImplicitCoin(t *testing.T) {
	cred := ledger.NewKeyCredential(bytes.Repeat([]byte{0x01}, 28))
	tx := ledger.NewTransaction()
	tx.Body.Withdrawals = []ledger.Withdrawal{
		{Account: append([]byte{0xe1}, bytes.Repeat([]byte{0x02}, 28)...), Amount: 3_000_000},
		{Account: append([]byte{0xe1}, bytes.Repeat([]byte{0x03}, 28)...), Amount: 1_500_000},
	}
	tx.Body.Certificates = []ledger.Certificate{
		// legacy registration: deposit from protocol parameters
		&ledger.StakeRegistrationCert{Credential: cred},
		// Conway registration: deposit from the certificate
		&ledger.RegistrationCert{Credential: cred, Deposit: 5_000_000},
		// refund with explicit amount
		&ledger.UnregisterDRepCert{Credential: cred, Deposit: 4_000_000},
		// refund with no embedded amount falls back to the parameter
		&ledger.UnregistrationCert{Credential: cred, Deposit: 0},
		&ledger.PoolRegistrationCert{Operator: hash28(0x99)},
	}
	tx.Body.ProposalProcedures = []ledger.ProposalProcedure{
		{Deposit: 100_000_000, Action: ledger.NewInfoAction()},
	}

	implicit, err := balancing.ComputeImplicitCoin(tx, testParams())
	require.NoError(t, err)
	require.Equal(t, uint64(4_500_000), implicit.Withdrawals)
	// 2M (legacy key deposit) + 5M (cert) + 500M (pool) + 100M (proposal)
	require.Equal(t, uint64(607_000_000), implicit.Deposits)
	// 4M (drep refund) + 2M (fallback key deposit)
	require.Equal(t, uint64(6_000_000), implicit.ReclaimDeposits)
}

func TestComputeImplicitCoinEmptyBody(t *testing.T) {
	implicit, err := balancing.ComputeImplicitCoin(ledger.NewTransaction(), testParams())
	require.NoError(t, err)
	require.Zero(t, implicit.Withdrawals)
	require.Zero(t, implicit.Deposits)
	require.Zero(t, implicit.ReclaimDeposits)
}

func TestComputeImplicitCoinNilArguments(t *testing.T) {
	_, err := balancing.ComputeImplicitCoin(nil, testParams())
	require.Error(t, err)
	_, err = balancing.ComputeImplicitCoin(ledger.NewTransaction(), nil)
	require.Error(t, err)
}
