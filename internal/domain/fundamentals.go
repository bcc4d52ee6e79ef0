package domain

// QuarterlyEPS represents one quarter of reported earnings per share.
// Corresponds to quarterly_eps table in PostgreSQL.
type QuarterlyEPS struct {
	SecurityID string  // FK to securities
	Year       int     // reporting year
	Quarter    int     // 1..4
	EPS        float64 // earnings per share for the quarter
}

// MonthlyRevenue represents one month of reported revenue.
// Corresponds to monthly_revenue table in PostgreSQL.
type MonthlyRevenue struct {
	SecurityID string  // FK to securities
	Year       int     // reporting year
	Month      int     // 1..12
	Revenue    float64 // revenue for the month
}
