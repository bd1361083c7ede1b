package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		UserID:      1,
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}}, // zero date
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}},
		{Date: NewDate(2025, 1, 1), Description: string(make([]byte, 256)), Amount: Money{Cents: 1}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct{ year, month, days int }{
		{2024, 2, 29},
		{2025, 2, 28},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.days {
			t.Fatalf("%d-%02d expected %d days, got %d", tc.year, tc.month, tc.days, got)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, 2)
	if first.String() != "2024-02-01" || last.String() != "2024-02-29" {
		t.Fatalf("unexpected bounds %s..%s", first, last)
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct{ y, m, n, wy, wm int }{
		{2025, 1, -1, 2024, 12},
		{2025, 3, -14, 2024, 1},
		{2024, 12, 1, 2025, 1},
		{2025, 6, 0, 2025, 6},
	}
	for _, tc := range cases {
		y, m := AddMonths(tc.y, tc.m, tc.n)
		if y != tc.wy || m != tc.wm {
			t.Fatalf("AddMonths(%d,%d,%d) = %d-%d, want %d-%d", tc.y, tc.m, tc.n, y, m, tc.wy, tc.wm)
		}
	}
}

func TestParseThresholdType(t *testing.T) {
	if tt, err := ParseThresholdType(""); err != nil || tt != Monthly {
		t.Fatalf("empty type should default to MONTHLY, got %q (%v)", tt, err)
	}
	if tt, err := ParseThresholdType(" weekly "); err != nil || tt != Weekly {
		t.Fatalf("expected WEEKLY, got %q (%v)", tt, err)
	}
	if _, err := ParseThresholdType("hourly"); !errors.Is(err, ErrInvalidThresholdType) {
		t.Fatalf("expected ErrInvalidThresholdType, got %v", err)
	}
}

func TestThresholdValidate(t *testing.T) {
	base := Threshold{UserID: 1, Limit: Money{Cents: 100000}, Type: Monthly, AlertPercentage: 80}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noLimit := base
	noLimit.Limit = Money{}
	if err := noLimit.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	for _, pct := range []int{-1, 101} {
		bad := base
		bad.AlertPercentage = pct
		if err := bad.Validate(); !errors.Is(err, ErrInvalidAlertPercentage) {
			t.Fatalf("pct %d: expected ErrInvalidAlertPercentage, got %v", pct, err)
		}
	}
}

func TestThresholdEvaluable(t *testing.T) {
	cat := int64(3)
	ok := Threshold{Limit: Money{Cents: 1}, AlertPercentage: 0, CategoryID: &cat}
	if !ok.Evaluable() || ok.IsOverall() {
		t.Fatalf("expected evaluable category threshold")
	}
	if (Threshold{Limit: Money{Cents: 0}, AlertPercentage: 80}).Evaluable() {
		t.Fatalf("zero limit must not be evaluable")
	}
	if (Threshold{Limit: Money{Cents: 10}, AlertPercentage: 120}).Evaluable() {
		t.Fatalf("out of range percentage must not be evaluable")
	}
}
