package domain

import "fmt"

// StoreConflict is a business rule rejection raised by the store
type StoreConflict struct {
	Reason  string
	Message string
}

func (e *StoreConflict) Error() string {
	if e.Message == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// DuplicateError reports a marking code that was already recorded
type DuplicateError struct {
	Reason  string
	Code    string
	Message string
}

func (e *DuplicateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "marking code already recorded"
}

// IsDuplicateReason reports whether reason is one of the duplicate code conflicts
func IsDuplicateReason(reason string) bool {
	return reason == ReasonCodeAlreadyUsed || reason == ReasonCodeDupInShipment
}
