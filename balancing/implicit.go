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

// Package balancing implements the transaction balancing engine: the
// implicit-coin accountant, required-signers extractor, fee estimator,
// collateral sub-loop, and the main balancing fixpoint.
package balancing

import (
	"fmt"
	"math"

	"github.com/blinklabs-io/txcraft/ledger"
)

// ImplicitCoin is the lovelace a transaction moves without explicit
// inputs or outputs: reward withdrawals, deposits posted, and deposits
// reclaimed
type ImplicitCoin struct {
	Withdrawals     uint64
	Deposits        uint64
	ReclaimDeposits uint64
}

func addUint64Checked(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("implicit coin sum: %w", ledger.ErrArithmeticOverflow)
	}
	return a + b, nil
}

// ComputeImplicitCoin sums the withdrawal credits, deposits, and deposit
// refunds implied by the transaction's certificates and proposals.
// Refund certificates that carry no explicit amount fall back to the
// current protocol-parameter deposit.
func ComputeImplicitCoin(
	tx *ledger.Transaction,
	params *ledger.ProtocolParameters,
) (ImplicitCoin, error) {
	if tx == nil || params == nil {
		return ImplicitCoin{}, fmt.Errorf("transaction and parameters are required: %w", ledger.ErrPointerNull)
	}
	var implicit ImplicitCoin
	var err error
	for _, wdrl := range tx.Body.Withdrawals {
		implicit.Withdrawals, err = addUint64Checked(implicit.Withdrawals, wdrl.Amount)
		if err != nil {
			return ImplicitCoin{}, err
		}
	}
	for _, cert := range tx.Body.Certificates {
		var deposit, reclaim uint64
		switch c := cert.(type) {
		case *ledger.StakeRegistrationCert:
			deposit = params.KeyDeposit
		case *ledger.RegistrationCert:
			deposit = c.Deposit
		case *ledger.StakeRegistrationDelegationCert:
			deposit = c.Deposit
		case *ledger.VoteRegistrationDelegationCert:
			deposit = c.Deposit
		case *ledger.StakeVoteRegistrationDelegationCert:
			deposit = c.Deposit
		case *ledger.RegisterDRepCert:
			deposit = c.Deposit
		case *ledger.PoolRegistrationCert:
			deposit = params.PoolDeposit
		case *ledger.StakeDeregistrationCert:
			reclaim = params.KeyDeposit
		case *ledger.UnregistrationCert:
			reclaim = c.Deposit
			if reclaim == 0 {
				reclaim = params.KeyDeposit
			}
		case *ledger.UnregisterDRepCert:
			reclaim = c.Deposit
			if reclaim == 0 {
				reclaim = params.DRepDeposit
			}
		}
		if deposit > 0 {
			implicit.Deposits, err = addUint64Checked(implicit.Deposits, deposit)
			if err != nil {
				return ImplicitCoin{}, err
			}
		}
		if reclaim > 0 {
			implicit.ReclaimDeposits, err = addUint64Checked(implicit.ReclaimDeposits, reclaim)
			if err != nil {
				return ImplicitCoin{}, err
			}
		}
	}
	for i := range tx.Body.ProposalProcedures {
		implicit.Deposits, err = addUint64Checked(
			implicit.Deposits,
			tx.Body.ProposalProcedures[i].Deposit,
		)
		if err != nil {
			return ImplicitCoin{}, err
		}
	}
	return implicit, nil
}
