package http

import (
	"strconv"
	"time"

	"cashflow/internal/core"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func expenseFor(userID, cents int64) core.Expense {
	return core.Expense{
		UserID:      userID,
		Date:        core.DateOf(time.Now()),
		Description: "direct",
		Amount:      core.Money{Cents: cents},
	}
}
