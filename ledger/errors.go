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
	"errors"
	"fmt"
)

// ErrorCode identifies a stable error category. Names are stable across
// releases; numeric values are not.
type ErrorCode int

const (
	CodeSuccess ErrorCode = iota
	CodePointerNull
	CodeOutOfBoundsMemoryRead
	CodeOutOfBoundsMemoryWrite
	CodeInsufficientBufferSize
	CodeInvalidArgument
	CodeMemoryAllocationFailed
	CodeDecoding
	CodeUnexpectedCborType
	CodeInvalidCborArraySize
	CodeInvalidCborMapKey
	CodeInvalidCborValue
	CodeInvalidAddressType
	CodeInvalidCredentialType
	CodeInvalidBip32DerivationIndex
	CodeInvalidEd25519SignatureSize
	CodeInvalidEd25519PublicKeySize
	CodeInvalidEd25519PrivateKeySize
	CodeInvalidBip32PublicKeySize
	CodeInvalidBip32PrivateKeySize
	CodeInvalidBlake2bHashSize
	CodeInvalidProcedureProposalType
	CodeElementNotFound
	CodeBalanceInsufficient
	CodeArithmeticOverflow
)

var errorCodeNames = map[ErrorCode]string{
	CodeSuccess:                      "Success",
	CodePointerNull:                  "PointerNull",
	CodeOutOfBoundsMemoryRead:        "OutOfBoundsMemoryRead",
	CodeOutOfBoundsMemoryWrite:       "OutOfBoundsMemoryWrite",
	CodeInsufficientBufferSize:       "InsufficientBufferSize",
	CodeInvalidArgument:              "InvalidArgument",
	CodeMemoryAllocationFailed:       "MemoryAllocationFailed",
	CodeDecoding:                     "Decoding",
	CodeUnexpectedCborType:           "UnexpectedCborType",
	CodeInvalidCborArraySize:         "InvalidCborArraySize",
	CodeInvalidCborMapKey:            "InvalidCborMapKey",
	CodeInvalidCborValue:             "InvalidCborValue",
	CodeInvalidAddressType:           "InvalidAddressType",
	CodeInvalidCredentialType:        "InvalidCredentialType",
	CodeInvalidBip32DerivationIndex:  "InvalidBip32DerivationIndex",
	CodeInvalidEd25519SignatureSize:  "InvalidEd25519SignatureSize",
	CodeInvalidEd25519PublicKeySize:  "InvalidEd25519PublicKeySize",
	CodeInvalidEd25519PrivateKeySize: "InvalidEd25519PrivateKeySize",
	CodeInvalidBip32PublicKeySize:    "InvalidBip32PublicKeySize",
	CodeInvalidBip32PrivateKeySize:   "InvalidBip32PrivateKeySize",
	CodeInvalidBlake2bHashSize:       "InvalidBlake2bHashSize",
	CodeInvalidProcedureProposalType: "InvalidProcedureProposalType",
	CodeElementNotFound:              "ElementNotFound",
	CodeBalanceInsufficient:          "BalanceInsufficient",
	CodeArithmeticOverflow:           "ArithmeticOverflow",
}

// String returns the stable name of the error code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// maxErrorMessageLen bounds diagnostic strings attached to coded errors
const maxErrorMessageLen = 256

// CodedError pairs a stable error code with a bounded diagnostic message.
// The message is for humans only and never drives control flow.
type CodedError struct {
	Code    ErrorCode
	Message string
}

// NewCodedError creates a CodedError, truncating the message to the
// diagnostic bound
func NewCodedError(code ErrorCode, message string) *CodedError {
	if len(message) > maxErrorMessageLen {
		message = message[:maxErrorMessageLen]
	}
	return &CodedError{Code: code, Message: message}
}

func (e *CodedError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same error code, making sentinel
// comparisons via errors.Is work across wrapping
func (e *CodedError) Is(target error) bool {
	var coded *CodedError
	if errors.As(target, &coded) {
		return coded.Code == e.Code
	}
	return false
}

// Sentinel errors for the engine's failure surface
var (
	ErrPointerNull          = &CodedError{Code: CodePointerNull}
	ErrInvalidArgument      = &CodedError{Code: CodeInvalidArgument}
	ErrMalformedCbor        = &CodedError{Code: CodeDecoding}
	ErrUnexpectedCborType   = &CodedError{Code: CodeUnexpectedCborType}
	ErrInvalidCborArraySize = &CodedError{Code: CodeInvalidCborArraySize}
	ErrInvalidCborMapKey    = &CodedError{Code: CodeInvalidCborMapKey}
	ErrInvalidCborValue     = &CodedError{Code: CodeInvalidCborValue}
	ErrInvalidAddressType   = &CodedError{Code: CodeInvalidAddressType}
	ErrElementNotFound      = &CodedError{Code: CodeElementNotFound}
	ErrBalanceInsufficient  = &CodedError{Code: CodeBalanceInsufficient}
	ErrArithmeticOverflow   = &CodedError{Code: CodeArithmeticOverflow}
)

// ErrorCodeOf extracts the stable code from an error chain, returning
// CodeSuccess for nil and CodeInvalidArgument for uncoded errors
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeSuccess
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInvalidArgument
}
