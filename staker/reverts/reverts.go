// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a rejected transition.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAlreadyInitialized
	KindNotInitialized
	KindInvalidPolicy
	KindUnrecognizedAsset
	KindStakeLimitExceeded
	KindAlreadyLocked
	KindNotLocked
	KindNotOwner
	KindLockNotExpired
	KindExternalCommandFailed
	KindUnauthorized
	KindRewardOverflow
)

var kindNames = [...]string{
	KindUnknown:               "Unknown",
	KindAlreadyInitialized:    "AlreadyInitialized",
	KindNotInitialized:        "NotInitialized",
	KindInvalidPolicy:         "InvalidPolicy",
	KindUnrecognizedAsset:     "UnrecognizedAsset",
	KindStakeLimitExceeded:    "StakeLimitExceeded",
	KindAlreadyLocked:         "AlreadyLocked",
	KindNotLocked:             "NotLocked",
	KindNotOwner:              "NotOwner",
	KindLockNotExpired:        "LockNotExpired",
	KindExternalCommandFailed: "ExternalCommandFailed",
	KindUnauthorized:          "Unauthorized",
	KindRewardOverflow:        "RewardOverflow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

var (
	ErrAlreadyInitialized    = &ErrRevert{kind: KindAlreadyInitialized, message: "policy already initialized"}
	ErrNotInitialized        = &ErrRevert{kind: KindNotInitialized, message: "policy not initialized"}
	ErrInvalidPolicy         = &ErrRevert{kind: KindInvalidPolicy, message: "invalid policy"}
	ErrUnrecognizedAsset     = &ErrRevert{kind: KindUnrecognizedAsset, message: "asset is not a verified collection member"}
	ErrStakeLimitExceeded    = &ErrRevert{kind: KindStakeLimitExceeded, message: "stake limit exceeded"}
	ErrAlreadyLocked         = &ErrRevert{kind: KindAlreadyLocked, message: "asset already locked"}
	ErrNotLocked             = &ErrRevert{kind: KindNotLocked, message: "asset not locked"}
	ErrNotOwner              = &ErrRevert{kind: KindNotOwner, message: "caller is not the owner"}
	ErrLockNotExpired        = &ErrRevert{kind: KindLockNotExpired, message: "lock duration not elapsed"}
	ErrExternalCommandFailed = &ErrRevert{kind: KindExternalCommandFailed, message: "external command failed"}
	ErrUnauthorized          = &ErrRevert{kind: KindUnauthorized, message: "caller is not authorized"}
	ErrRewardOverflow        = &ErrRevert{kind: KindRewardOverflow, message: "reward amount overflows"}
)

type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Wrap returns a revert of the given kind carrying cause.
func Wrap(kind Kind, message string, cause error) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
		cause:   cause,
	}
}

// ExternalFailure wraps a collaborator failure.
func ExternalFailure(cause error) *ErrRevert {
	return Wrap(KindExternalCommandFailed, ErrExternalCommandFailed.message, cause)
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is matches reverts of the same kind, so wrapped values match the sentinels.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	if t.kind == KindUnknown {
		return t == e
	}
	return t.kind == e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the first revert in err's chain.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return KindUnknown
}
