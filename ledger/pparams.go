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

package ledger

import (
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// newRat is a helper to create a cbor.Rat from numerator and denominator
func newRat(num, denom int64) *cbor.Rat {
	return &cbor.Rat{Rat: big.NewRat(num, denom)}
}

// PoolVotingThresholds are the five pool voting thresholds (Conway)
type PoolVotingThresholds struct {
	cbor.StructAsArray
	MotionNoConfidence    cbor.Rat
	CommitteeNormal       cbor.Rat
	CommitteeNoConfidence cbor.Rat
	HardForkInitiation    cbor.Rat
	PpSecurityGroup       cbor.Rat
}

// DRepVotingThresholds are the ten DRep voting thresholds (Conway)
type DRepVotingThresholds struct {
	cbor.StructAsArray
	MotionNoConfidence    cbor.Rat
	CommitteeNormal       cbor.Rat
	CommitteeNoConfidence cbor.Rat
	UpdateToConstitution  cbor.Rat
	HardForkInitiation    cbor.Rat
	PpNetworkGroup        cbor.Rat
	PpEconomicGroup       cbor.Rat
	PpTechnicalGroup      cbor.Rat
	PpGovGroup            cbor.Rat
	TreasuryWithdrawal    cbor.Rat
}

// ProtocolParameters is the Conway-era protocol parameter set. The engine
// interprets only the fee, deposit, and size parameters; the governance
// thresholds and cost models are carried for CBOR round-trip.
type ProtocolParameters struct {
	MinFeeA                    uint64                                      `cbor:"0,keyasint,omitempty"`
	MinFeeB                    uint64                                      `cbor:"1,keyasint,omitempty"`
	MaxBlockBodySize           uint64                                      `cbor:"2,keyasint,omitempty"`
	MaxTxSize                  uint64                                      `cbor:"3,keyasint,omitempty"`
	MaxBlockHeaderSize         uint64                                      `cbor:"4,keyasint,omitempty"`
	KeyDeposit                 uint64                                      `cbor:"5,keyasint,omitempty"`
	PoolDeposit                uint64                                      `cbor:"6,keyasint,omitempty"`
	MaxEpoch                   uint64                                      `cbor:"7,keyasint,omitempty"`
	NOpt                       uint64                                      `cbor:"8,keyasint,omitempty"`
	A0                         *cbor.Rat                                   `cbor:"9,keyasint,omitempty"`
	Rho                        *cbor.Rat                                   `cbor:"10,keyasint,omitempty"`
	Tau                        *cbor.Rat                                   `cbor:"11,keyasint,omitempty"`
	ProtocolVersion            *lcommon.ProtocolParametersProtocolVersion  `cbor:"14,keyasint,omitempty"`
	MinPoolCost                uint64                                      `cbor:"15,keyasint,omitempty"`
	AdaPerUtxoByte             uint64                                      `cbor:"16,keyasint,omitempty"`
	CostModels                 map[uint][]int64                            `cbor:"17,keyasint,omitempty"`
	ExecutionCosts             *lcommon.ExUnitPrice                        `cbor:"18,keyasint,omitempty"`
	MaxTxExUnits               *lcommon.ExUnits                            `cbor:"19,keyasint,omitempty"`
	MaxBlockExUnits            *lcommon.ExUnits                            `cbor:"20,keyasint,omitempty"`
	MaxValueSize               uint64                                      `cbor:"21,keyasint,omitempty"`
	CollateralPercentage       uint64                                      `cbor:"22,keyasint,omitempty"`
	MaxCollateralInputs        uint64                                      `cbor:"23,keyasint,omitempty"`
	PoolVotingThresholds       *PoolVotingThresholds                       `cbor:"24,keyasint,omitempty"`
	DRepVotingThresholds       *DRepVotingThresholds                       `cbor:"25,keyasint,omitempty"`
	MinCommitteeSize           uint64                                      `cbor:"26,keyasint,omitempty"`
	CommitteeTermLimit         uint64                                      `cbor:"27,keyasint,omitempty"`
	GovActionValidityPeriod    uint64                                      `cbor:"28,keyasint,omitempty"`
	GovActionDeposit           uint64                                      `cbor:"29,keyasint,omitempty"`
	DRepDeposit                uint64                                      `cbor:"30,keyasint,omitempty"`
	DRepInactivityPeriod       uint64                                      `cbor:"31,keyasint,omitempty"`
	MinFeeRefScriptCostPerByte *cbor.Rat                                   `cbor:"33,keyasint,omitempty"`
}

// MarshalCBOR encodes the parameter set as an integer-keyed map
func (p ProtocolParameters) MarshalCBOR() ([]byte, error) {
	type tProtocolParameters ProtocolParameters
	return cbor.Encode(tProtocolParameters(p))
}

// UnmarshalCBOR reads an integer-keyed parameter map
func (p *ProtocolParameters) UnmarshalCBOR(raw []byte) error {
	type tProtocolParameters ProtocolParameters
	var tmp tProtocolParameters
	if _, err := cbor.Decode(raw, &tmp); err != nil {
		return fmt.Errorf("protocol parameters: %w: %s", ErrMalformedCbor, err)
	}
	*p = ProtocolParameters(tmp)
	return nil
}

// NewMainnetProtocolParameters returns protocol parameters with typical
// mainnet values for the Conway era
func NewMainnetProtocolParameters() *ProtocolParameters {
	return &ProtocolParameters{
		MinFeeA:            44,
		MinFeeB:            155381,
		MaxBlockBodySize:   90112,
		MaxTxSize:          16384,
		MaxBlockHeaderSize: 1100,
		KeyDeposit:         2000000,   // 2 ADA
		PoolDeposit:        500000000, // 500 ADA
		MaxEpoch:           18,
		NOpt:               500,
		A0:                 newRat(3, 10),   // pool influence factor 0.3
		Rho:                newRat(3, 1000), // monetary expansion 0.003
		Tau:                newRat(2, 10),   // treasury cut 0.2
		ProtocolVersion: &lcommon.ProtocolParametersProtocolVersion{
			Major: 9,
			Minor: 0,
		},
		MinPoolCost:    170000000,
		AdaPerUtxoByte: 4310,
		CostModels: map[uint][]int64{
			0: PlutusV1CostModel(),
			1: PlutusV2CostModel(),
			2: PlutusV3CostModel(),
		},
		ExecutionCosts: &lcommon.ExUnitPrice{
			MemPrice:  newRat(577, 10000),    // 0.0577 lovelace per memory unit
			StepPrice: newRat(721, 10000000), // 0.0000721 lovelace per step
		},
		MaxTxExUnits: &lcommon.ExUnits{
			Memory: 14000000,
			Steps:  10000000000,
		},
		MaxBlockExUnits: &lcommon.ExUnits{
			Memory: 62000000,
			Steps:  40000000000,
		},
		MaxValueSize:         5000,
		CollateralPercentage: 150,
		MaxCollateralInputs:  3,
		PoolVotingThresholds: &PoolVotingThresholds{
			MotionNoConfidence:    cbor.Rat{Rat: big.NewRat(51, 100)},
			CommitteeNormal:       cbor.Rat{Rat: big.NewRat(51, 100)},
			CommitteeNoConfidence: cbor.Rat{Rat: big.NewRat(51, 100)},
			HardForkInitiation:    cbor.Rat{Rat: big.NewRat(51, 100)},
			PpSecurityGroup:       cbor.Rat{Rat: big.NewRat(51, 100)},
		},
		DRepVotingThresholds: &DRepVotingThresholds{
			MotionNoConfidence:    cbor.Rat{Rat: big.NewRat(67, 100)},
			CommitteeNormal:       cbor.Rat{Rat: big.NewRat(67, 100)},
			CommitteeNoConfidence: cbor.Rat{Rat: big.NewRat(60, 100)},
			UpdateToConstitution:  cbor.Rat{Rat: big.NewRat(75, 100)},
			HardForkInitiation:    cbor.Rat{Rat: big.NewRat(60, 100)},
			PpNetworkGroup:        cbor.Rat{Rat: big.NewRat(67, 100)},
			PpEconomicGroup:       cbor.Rat{Rat: big.NewRat(67, 100)},
			PpTechnicalGroup:      cbor.Rat{Rat: big.NewRat(67, 100)},
			PpGovGroup:            cbor.Rat{Rat: big.NewRat(75, 100)},
			TreasuryWithdrawal:    cbor.Rat{Rat: big.NewRat(67, 100)},
		},
		MinCommitteeSize:           7,
		CommitteeTermLimit:         146,
		GovActionValidityPeriod:    6,
		GovActionDeposit:           100000000000, // 100,000 ADA
		DRepDeposit:                500000000,    // 500 ADA
		DRepInactivityPeriod:       20,
		MinFeeRefScriptCostPerByte: newRat(15, 1),
	}
}

// PlutusV1CostModel returns a representative Plutus V1 cost model (166
// parameters). These are not the live mainnet values.
func PlutusV1CostModel() []int64 {
	costModel := make([]int64, 166)
	costModel[0] = 205665 // addInteger-cpu-arguments-intercept
	costModel[1] = 812    // addInteger-cpu-arguments-slope
	costModel[2] = 1      // addInteger-memory-arguments-intercept
	costModel[3] = 1      // addInteger-memory-arguments-slope
	for i := 4; i < 166; i++ {
		costModel[i] = 1000 + int64(i*100)
	}
	return costModel
}

// PlutusV2CostModel returns a representative Plutus V2 cost model (175
// parameters)
func PlutusV2CostModel() []int64 {
	costModel := make([]int64, 175)
	copy(costModel, PlutusV1CostModel())
	for i := 166; i < 175; i++ {
		costModel[i] = 2000 + int64(i*50)
	}
	return costModel
}

// PlutusV3CostModel returns a representative Plutus V3 cost model (223
// parameters)
func PlutusV3CostModel() []int64 {
	costModel := make([]int64, 223)
	copy(costModel, PlutusV2CostModel())
	for i := 175; i < 223; i++ {
		costModel[i] = 3000 + int64(i*50)
	}
	return costModel
}
