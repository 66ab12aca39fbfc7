package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

type settlementService struct {
	st    store.RecordStore
	clock Clock
}

func NewSettlementService(st store.RecordStore, clock Clock) SettlementService {
	return &settlementService{st: st, clock: clock}
}

func (s *settlementService) getSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	var st domain.Settlement
	err := s.st.Get(ctx, store.CollSettlements, id, &st)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Collect takes an optional discount followed by a payment against a pending
// or partial settlement. Collecting the full remainder in one payment or in
// several partial payments reaches the same terminal state: status paid,
// remaining zero.
func (s *settlementService) Collect(ctx context.Context, req CollectSettlementRequest) (*CollectSettlementResult, error) {
	settlement, err := s.getSettlement(ctx, req.SettlementID)
	if err != nil {
		return nil, err
	}
	if settlement.Status != domain.SettlementPending && settlement.Status != domain.SettlementPartial {
		return nil, fmt.Errorf("%w: settlement is already %s", domain.ErrValidation, settlement.Status)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.ChannelCash
	}
	date, tod := stamp(s.clock)
	appender := newLogAppender(s.st)
	remaining := settlement.Remaining

	// The discount shrinks what is owed before any money changes hands. It
	// gets its own log entry but is deliberately absent from the totals.
	if req.Discount > 0 {
		if req.Discount > remaining {
			return nil, domain.ErrExcessiveDiscount
		}
		reason := req.DiscountReason
		if reason == "" {
			reason = "Settlement discount"
		}
		if err := appender.Append(ctx, domain.LogDiscounts, domain.LedgerEntry{
			SettlementID: req.SettlementID,
			Room:         settlement.Room,
			Name:         settlement.GuestName,
			Amount:       req.Discount,
			Date:         date,
			Time:         tod,
			Reason:       reason,
		}); err != nil {
			return nil, err
		}
		remaining -= req.Discount
	}

	payment := req.Amount
	if payment == 0 {
		payment = remaining
	}
	if payment < 0 {
		return nil, fmt.Errorf("%w: payment amount cannot be negative", domain.ErrValidation)
	}
	if payment > remaining {
		return nil, domain.ErrExcessivePayment
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return nil, err
	}
	if payment > 0 {
		if err := appender.Append(ctx, paymentMethod, domain.LedgerEntry{
			SettlementID: req.SettlementID,
			Room:         settlement.Room,
			Name:         settlement.GuestName,
			Amount:       payment,
			Date:         date,
			Time:         tod,
			Note:         "Settlement payment",
		}); err != nil {
			return nil, err
		}
		totals[paymentMethod] += payment
		settlement.Payments = append(settlement.Payments, domain.SettlementPayment{
			Amount:      payment,
			PaymentMode: paymentMethod,
			Date:        date,
			Time:        tod,
		})
	}

	remaining -= payment
	settlement.Remaining = remaining
	if remaining == 0 {
		settlement.Status = domain.SettlementPaid
	} else {
		settlement.Status = domain.SettlementPartial
	}

	batch := &store.Batch{}
	batch.Set(store.CollSettlements, req.SettlementID, *settlement)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}

	logger.Info("settlement collected", "settlement_id", req.SettlementID, "paid", payment, "remaining", remaining, "status", settlement.Status)
	return &CollectSettlementResult{Paid: payment, Remaining: remaining, Status: settlement.Status}, nil
}

func (s *settlementService) Cancel(ctx context.Context, settlementID string, hardDelete bool, reason string) error {
	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if hardDelete {
		if err := s.st.Delete(ctx, store.CollSettlements, settlementID); err != nil {
			return err
		}
		logger.Info("settlement deleted", "settlement_id", settlementID)
		return nil
	}
	settlement.Status = domain.SettlementCancelled
	settlement.CancellationReason = reason
	if err := s.st.Set(ctx, store.CollSettlements, settlementID, *settlement); err != nil {
		return err
	}
	logger.Info("settlement cancelled", "settlement_id", settlementID, "reason", reason)
	return nil
}

func (s *settlementService) List(ctx context.Context) ([]SettlementWithID, error) {
	records, err := s.st.List(ctx, store.CollSettlements)
	if err != nil {
		return nil, err
	}
	settlements := make([]SettlementWithID, 0, len(records))
	for _, rec := range records {
		var st domain.Settlement
		if err := rec.Decode(&st); err != nil {
			return nil, err
		}
		settlements = append(settlements, SettlementWithID{ID: rec.Key, Settlement: st})
	}
	rank := func(status domain.SettlementStatus) int {
		switch status {
		case domain.SettlementPending:
			return 0
		case domain.SettlementPartial:
			return 1
		case domain.SettlementPaid:
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(settlements, func(i, j int) bool {
		ri, rj := rank(settlements[i].Status), rank(settlements[j].Status)
		if ri != rj {
			return ri < rj
		}
		return settlements[i].Date > settlements[j].Date
	})
	return settlements, nil
}
