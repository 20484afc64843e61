package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInsufficientFunds    Kind = "InsufficientFunds"
	KindInvalidAmount        Kind = "InvalidAmount"
	KindBelowMinimum         Kind = "BelowMinimum"
	KindBelowMinContribution Kind = "BelowMinContribution"
	KindMissionLocked        Kind = "MissionLocked"
	KindUnknownMission       Kind = "UnknownMission"
	KindEligibilityNotMet    Kind = "EligibilityNotMet"
	KindAlreadyClaimed       Kind = "AlreadyClaimed"
	KindAlreadyOwned         Kind = "AlreadyOwned"
	KindNotEligible          Kind = "NotEligible"
	KindPositionNotFound     Kind = "PositionNotFound"
	KindPurchaseNotFound     Kind = "PurchaseNotFound"
	KindNotActive            Kind = "NotActive"
	KindCooldownActive       Kind = "CooldownActive"
	KindUnknownOption        Kind = "UnknownOption"
	KindUnknownToken         Kind = "UnknownToken"
	KindUnknownPool          Kind = "UnknownPool"
	KindUnknownNFT           Kind = "UnknownNFT"
	KindUnknownAirdrop       Kind = "UnknownAirdrop"
	KindUnknownPlan          Kind = "UnknownPlan"
	KindInvalidGraph         Kind = "InvalidGraph"
	KindStorageUnavailable   Kind = "StorageUnavailable"
)

// LedgerError carries a Kind. Sentinels below are compared with errors.Is;
// wrapped variants keep the sentinel as their cause.
type LedgerError struct {
	Kind    Kind
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

var (
	ErrInsufficientFunds    = &LedgerError{KindInsufficientFunds, "insufficient funds"}
	ErrInvalidAmount        = &LedgerError{KindInvalidAmount, "amount must be positive"}
	ErrBelowMinimum         = &LedgerError{KindBelowMinimum, "amount below option minimum"}
	ErrBelowMinContribution = &LedgerError{KindBelowMinContribution, "amount below pool minimum contribution"}
	ErrMissionLocked        = &LedgerError{KindMissionLocked, "mission is locked"}
	ErrUnknownMission       = &LedgerError{KindUnknownMission, "unknown mission"}
	ErrEligibilityNotMet    = &LedgerError{KindEligibilityNotMet, "eligibility not met"}
	ErrAlreadyClaimed       = &LedgerError{KindAlreadyClaimed, "already claimed"}
	ErrAlreadyOwned         = &LedgerError{KindAlreadyOwned, "already owned"}
	ErrNotEligible          = &LedgerError{KindNotEligible, "not eligible"}
	ErrPositionNotFound     = &LedgerError{KindPositionNotFound, "stake position not found"}
	ErrPurchaseNotFound     = &LedgerError{KindPurchaseNotFound, "installment purchase not found"}
	ErrNotActive            = &LedgerError{KindNotActive, "not active"}
	ErrCooldownActive       = &LedgerError{KindCooldownActive, "cooldown active"}
	ErrUnknownOption        = &LedgerError{KindUnknownOption, "unknown stake option"}
	ErrUnknownToken         = &LedgerError{KindUnknownToken, "unknown governance token"}
	ErrUnknownPool          = &LedgerError{KindUnknownPool, "unknown pool"}
	ErrUnknownNFT           = &LedgerError{KindUnknownNFT, "unknown NFT"}
	ErrUnknownAirdrop       = &LedgerError{KindUnknownAirdrop, "unknown airdrop"}
	ErrUnknownPlan          = &LedgerError{KindUnknownPlan, "unknown subscription plan"}
	ErrInvalidGraph         = &LedgerError{KindInvalidGraph, "invalid mission graph"}
	ErrStorageUnavailable   = &LedgerError{KindStorageUnavailable, "storage unavailable"}
)

// KindOf classifies err. Errors that carry no kind come from the store or
// from decoding stored records, so they are reported as StorageUnavailable.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStorageUnavailable
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
