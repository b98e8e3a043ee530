package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shipscan/internal/services/api/scan/domain"
)

// Gate turns a duplicate commit into the block that freezes a session
type Gate struct {
	store domain.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewGate returns a gate that looks codes up in st
func NewGate(st domain.Store, log zerolog.Logger) *Gate {
	return &Gate{store: st, log: log, now: time.Now}
}

// Resolve builds the block for dup. The store's own text leads the message and
// the last known location follows it. A failed lookup still blocks
func (g *Gate) Resolve(ctx context.Context, dup *domain.DuplicateError) domain.DuplicateBlock {
	b := domain.DuplicateBlock{
		Code:   dup.Code,
		Reason: dup.Reason,
		Since:  g.now().UTC(),
	}
	msg := dup.Message
	if msg == "" {
		msg = genericDuplicateMessage(dup.Reason)
	}
	loc, err := g.store.FindLastUseOfCode(ctx, dup.Code)
	if err != nil {
		g.log.Warn().Err(err).Str("reason", dup.Reason).Msg("duplicate code lookup failed")
		b.Message = msg
		return b
	}
	b.Location = &loc
	b.Message = msg + ", last recorded in " + loc.ShipmentLabel + ", " + loc.BoxLabel
	return b
}

func genericDuplicateMessage(reason string) string {
	switch reason {
	case domain.ReasonCodeAlreadyUsed:
		return "marking code is attached to another shipment"
	case domain.ReasonCodeDupInShipment:
		return "marking code is already in this shipment"
	default:
		return "marking code already recorded"
	}
}
