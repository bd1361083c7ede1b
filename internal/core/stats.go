package core

import "time"

// NoCategoryPlaceholder stands in for the top category of a month without spending.
const NoCategoryPlaceholder = "-"

// CategoryPalette is cycled by breakdown rank, never by category identity.
var CategoryPalette = [...]string{
	"#6366f1", "#8b5cf6", "#ec4899", "#f43f5e", "#f97316",
	"#eab308", "#22c55e", "#14b8a6", "#06b6d4", "#3b82f6",
}

// ColorForRank returns the palette color for the i-th breakdown entry.
// Ranks are zero-based slice indexes.
func ColorForRank(i int) string {
	return CategoryPalette[i%len(CategoryPalette)]
}

// CategoryShare is one row of a monthly category breakdown.
type CategoryShare struct {
	CategoryID   *int64  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Amount       Money   `json:"amount"`
	Percentage   float64 `json:"percentage"`
	Color        string  `json:"color"`
}

// DailyAmount is the spending of a single calendar day.
type DailyAmount struct {
	Day    int    `json:"day"`
	Date   string `json:"date"`
	Amount Money  `json:"amount"`
}

// MonthlyStats is a computed snapshot for one user and calendar month.
type MonthlyStats struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	MonthName         string          `json:"monthName"`
	TotalSpent        Money           `json:"totalSpent"`
	AverageDaily      Money           `json:"averageDaily"`
	TransactionCount  int             `json:"transactionCount"`
	DaysInMonth       int             `json:"daysInMonth"`
	PreviousMonth     Money           `json:"previousMonthTotal"`
	ChangeAmount      Money           `json:"changeAmount"`
	ChangePercentage  float64         `json:"changePercentage"`
	IsIncrease        bool            `json:"isIncrease"`
	TopCategoryName   string          `json:"topCategoryName"`
	TopCategoryAmount Money           `json:"topCategoryAmount"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	DailyBreakdown    []DailyAmount   `json:"dailyBreakdown"`
}

// MonthlyTrendPoint holds one month of a trend series.
type MonthlyTrendPoint struct {
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	MonthName        string `json:"monthName"`
	TotalSpent       Money  `json:"totalSpent"`
	TransactionCount int    `json:"transactionCount"`
}

// MonthName returns the full English name of month (1-12).
func MonthName(month int) string {
	return time.Month(month).String()
}

// ShortMonthName returns the three letter English abbreviation of month (1-12).
func ShortMonthName(month int) string {
	return MonthName(month)[:3]
}

// ValidateYearMonth rejects months outside 1-12 and years outside 1-9999.
func ValidateYearMonth(year, month int) error {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return ErrInvalidPeriod
	}
	return nil
}
