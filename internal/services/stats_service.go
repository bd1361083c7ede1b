package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"

	"golang.org/x/sync/errgroup"
)

// maxTrendWorkers bounds the number of months fetched at once.
const maxTrendWorkers = 4

// StatsService builds monthly snapshots and multi-month trend series.
type StatsService struct {
	reader ledger.Reader
	logger *log.Logger
	now    func() time.Time
}

func NewStatsService(reader ledger.Reader, logger *log.Logger) *StatsService {
	if logger == nil {
		logger = log.Discard()
	}
	return &StatsService{
		reader: reader,
		logger: logger.WithComponent(log.ComponentStats),
		now:    time.Now,
	}
}

// WithClock replaces the clock that decides the current month.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// MonthlyStats computes the snapshot for one calendar month.
func (s *StatsService) MonthlyStats(ctx context.Context, userID int64, year, month int) (core.MonthlyStats, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return core.MonthlyStats{}, err
	}
	first, last := core.MonthBounds(year, month)

	entries, err := s.reader.ExpensesForUserInRange(ctx, userID, first, last)
	if err != nil {
		return core.MonthlyStats{}, fmt.Errorf("expenses for %d-%02d: %w", year, month, err)
	}
	ledgerTotal, err := s.reader.TotalForUserInRange(ctx, userID, first, last)
	if err != nil {
		return core.MonthlyStats{}, fmt.Errorf("total for %d-%02d: %w", year, month, err)
	}

	var total core.Money
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	if total != ledgerTotal {
		s.logger.WarnContext(ctx, "Monthly total differs from ledger total",
			log.FieldUserID, userID,
			log.FieldYear, year,
			log.FieldMonth, month,
			"sum_cents", total.Cents,
			"ledger_cents", ledgerTotal.Cents)
	}

	prevYear, prevMonth := core.AddMonths(year, month, -1)
	prevFirst, prevLast := core.MonthBounds(prevYear, prevMonth)
	previous, err := s.reader.TotalForUserInRange(ctx, userID, prevFirst, prevLast)
	if err != nil {
		return core.MonthlyStats{}, fmt.Errorf("total for %d-%02d: %w", prevYear, prevMonth, err)
	}

	days := core.DaysInMonth(year, month)
	change := total.Sub(previous)
	changePct := 0.0
	if previous.Cents > 0 {
		changePct = core.PercentFloat(change, previous)
	}

	stats := core.MonthlyStats{
		Year:              year,
		Month:             month,
		MonthName:         core.MonthName(month),
		TotalSpent:        total,
		AverageDaily:      core.DivideMoney(total, days),
		TransactionCount:  len(entries),
		DaysInMonth:       days,
		PreviousMonth:     previous,
		ChangeAmount:      change,
		ChangePercentage:  changePct,
		IsIncrease:        change.Cents > 0,
		TopCategoryName:   core.NoCategoryPlaceholder,
		CategoryBreakdown: categoryBreakdown(entries, total),
		DailyBreakdown:    dailyBreakdown(entries, year, month),
	}
	if len(stats.CategoryBreakdown) > 0 {
		top := stats.CategoryBreakdown[0]
		stats.TopCategoryName = top.CategoryName
		stats.TopCategoryAmount = top.Amount
	}

	s.logger.DebugContext(ctx, "Computed monthly stats",
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, month,
		"total_cents", total.Cents,
		"transactions", len(entries))

	return stats, nil
}

// categoryBreakdown groups entries by category name, ranks groups by amount
// (ties keep first-seen order) and colors them by rank.
func categoryBreakdown(entries []ledger.Entry, total core.Money) []core.CategoryShare {
	out := []core.CategoryShare{}
	if len(entries) == 0 || total.Cents == 0 {
		return out
	}
	index := map[string]int{}
	for _, e := range entries {
		name := e.CategoryName
		if e.CategoryID == nil || name == "" {
			name = core.UncategorizedName
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			share := core.CategoryShare{CategoryName: name}
			if e.CategoryID != nil {
				id := *e.CategoryID
				share.CategoryID = &id
			}
			out = append(out, share)
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	for i := range out {
		out[i].Percentage = core.PercentFloat(out[i].Amount, total)
		out[i].Color = core.ColorForRank(i)
	}
	return out
}

// dailyBreakdown has one entry per calendar day, including days without spending.
func dailyBreakdown(entries []ledger.Entry, year, month int) []core.DailyAmount {
	days := core.DaysInMonth(year, month)
	out := make([]core.DailyAmount, days)
	for d := 1; d <= days; d++ {
		out[d-1] = core.DailyAmount{Day: d, Date: core.NewDate(year, month, d).String()}
	}
	for _, e := range entries {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		i := e.Date.Day() - 1
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// MonthlyTrends returns monthsBack points, oldest first, ending at the current
// month. A non-nil categoryID restricts totals and counts to that category.
func (s *StatsService) MonthlyTrends(ctx context.Context, userID int64, monthsBack int, categoryID *int64) ([]core.MonthlyTrendPoint, error) {
	if monthsBack <= 0 {
		return []core.MonthlyTrendPoint{}, nil
	}
	now := s.now()
	points := make([]core.MonthlyTrendPoint, monthsBack)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTrendWorkers)
	for i := 0; i < monthsBack; i++ {
		year, month := core.AddMonths(now.Year(), int(now.Month()), i-(monthsBack-1))
		g.Go(func() error {
			p, err := s.trendPoint(gctx, userID, year, month, categoryID)
			if err != nil {
				return err
			}
			points[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *StatsService) trendPoint(ctx context.Context, userID int64, year, month int, categoryID *int64) (core.MonthlyTrendPoint, error) {
	first, last := core.MonthBounds(year, month)

	var (
		total core.Money
		err   error
	)
	if categoryID != nil {
		total, err = s.reader.TotalForUserAndCategoryInRange(ctx, userID, *categoryID, first, last)
	} else {
		total, err = s.reader.TotalForUserInRange(ctx, userID, first, last)
	}
	if err != nil {
		return core.MonthlyTrendPoint{}, fmt.Errorf("total for %d-%02d: %w", year, month, err)
	}

	entries, err := s.reader.ExpensesForUserInRange(ctx, userID, first, last)
	if err != nil {
		return core.MonthlyTrendPoint{}, fmt.Errorf("expenses for %d-%02d: %w", year, month, err)
	}
	count := 0
	for _, e := range entries {
		if categoryID == nil || (e.CategoryID != nil && *e.CategoryID == *categoryID) {
			count++
		}
	}

	return core.MonthlyTrendPoint{
		Year:             year,
		Month:            month,
		MonthName:        core.ShortMonthName(month),
		TotalSpent:       total,
		TransactionCount: count,
	}, nil
}
