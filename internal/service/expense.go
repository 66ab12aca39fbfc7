package service

import (
	"context"
	"fmt"
	"time"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

const (
	ExpenseTypeTransaction = "transaction"
	ExpenseTypeReport      = "report"
)

type expenseService struct {
	st    store.RecordStore
	clock Clock
}

func NewExpenseService(st store.RecordStore, clock Clock) ExpenseService {
	return &expenseService{st: st, clock: clock}
}

func (s *expenseService) AddExpense(ctx context.Context, req AddExpenseRequest) error {
	if req.Category == "" || req.Description == "" {
		return fmt.Errorf("%w: category and description are required", domain.ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: expense amount must be positive", domain.ErrValidation)
	}
	expenseType := req.ExpenseType
	if expenseType == "" {
		expenseType = ExpenseTypeTransaction
	}
	if expenseType != ExpenseTypeTransaction && expenseType != ExpenseTypeReport {
		return fmt.Errorf("%w: unknown expense type %q", domain.ErrValidation, req.ExpenseType)
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.ChannelCash
	}
	date := req.Date
	nowDate, tod := stamp(s.clock)
	if date == "" {
		date = nowDate
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: invalid expense date %q", domain.ErrValidation, req.Date)
	}

	appender := newLogAppender(s.st)
	if err := appender.Append(ctx, domain.LogExpenses, domain.LedgerEntry{
		Amount:      req.Amount,
		Date:        date,
		Time:        tod,
		Category:    req.Category,
		Description: req.Description,
		PaymentMode: paymentMethod,
		ExpenseType: expenseType,
	}); err != nil {
		return err
	}

	batch := &store.Batch{}
	// Report-only expenses show up in reports but do not move the running
	// totals.
	if expenseType == ExpenseTypeTransaction {
		totals, err := loadTotals(ctx, s.st)
		if err != nil {
			return err
		}
		totals[domain.TotalExpenses] += req.Amount
		batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	}
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return err
	}

	logger.Info("expense recorded", "category", req.Category, "amount", req.Amount, "type", expenseType)
	return nil
}

// Report aggregates all channel logs over an inclusive date range. Figures
// are recomputed from the logs rather than read from the running totals, so
// historical ranges stay accurate.
func (s *expenseService) Report(ctx context.Context, startDate, endDate string) (*Report, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", domain.ErrValidation, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", domain.ErrValidation, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date precedes start date", domain.ErrValidation)
	}

	inRange := func(e domain.LedgerEntry) bool {
		d, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			return false
		}
		return !d.Before(start) && !d.After(end)
	}
	filter := func(channel string) ([]domain.LedgerEntry, error) {
		log, err := loadLog(ctx, s.st, channel)
		if err != nil {
			return nil, err
		}
		var kept []domain.LedgerEntry
		for _, e := range log.Entries {
			if inRange(e) {
				kept = append(kept, e)
			}
		}
		return kept, nil
	}

	report := &Report{}
	if report.CashLogs, err = filter(domain.ChannelCash); err != nil {
		return nil, err
	}
	if report.OnlineLogs, err = filter(domain.ChannelOnline); err != nil {
		return nil, err
	}
	if report.AddOnLogs, err = filter(domain.LogAddOns); err != nil {
		return nil, err
	}
	if report.RefundLogs, err = filter(domain.LogRefunds); err != nil {
		return nil, err
	}
	if report.RenewalLogs, err = filter(domain.LogRenewals); err != nil {
		return nil, err
	}
	if report.ExpenseLogs, err = filter(domain.LogExpenses); err != nil {
		return nil, err
	}

	for _, e := range report.CashLogs {
		report.CashTotal += e.Amount
	}
	for _, e := range report.OnlineLogs {
		report.OnlineTotal += e.Amount
	}
	for _, e := range report.AddOnLogs {
		report.AddOnTotal += e.Amount
	}
	for _, e := range report.RefundLogs {
		report.RefundTotal += e.Amount
	}
	for _, e := range report.ExpenseLogs {
		report.ExpenseTotal += e.Amount
		if e.ExpenseType == ExpenseTypeReport {
			report.ReportExpenseTotal += e.Amount
		} else {
			report.TransactionExpenseTotal += e.Amount
		}
	}
	report.Renewals = len(report.RenewalLogs)
	report.TotalRevenue = report.CashTotal + report.OnlineTotal - report.RefundTotal - report.TransactionExpenseTotal

	// Check-ins over the range come from the rooms currently occupied; a
	// guest who has already checked out no longer counts here.
	rooms, err := s.st.List(ctx, store.CollRooms)
	if err != nil {
		return nil, err
	}
	for _, rec := range rooms {
		var room domain.Room
		if err := rec.Decode(&room); err != nil {
			return nil, err
		}
		if room.Status != domain.RoomOccupied || room.CheckinTime == "" {
			continue
		}
		ct, err := time.Parse(minuteLayout, room.CheckinTime)
		if err != nil {
			continue
		}
		day := ct.Truncate(24 * time.Hour)
		if !day.Before(start) && !day.After(end) {
			report.CheckIns++
		}
	}
	return report, nil
}
