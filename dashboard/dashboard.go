package dashboard

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// CalculateTrend returns the day-over-day change as a rounded percentage.
// A zero baseline yields 100 when today is positive and 0 otherwise, so a
// first day of sales reads as "+100%" rather than a division by zero.
func CalculateTrend(today, yesterday float64) int {
	if math.IsNaN(today) || math.IsInf(today, 0) {
		today = 0
	}
	if math.IsNaN(yesterday) || math.IsInf(yesterday, 0) {
		yesterday = 0
	}

	if yesterday == 0 {
		if today > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round((today - yesterday) / yesterday * 100))
}

// FormatAmount renders a monetary value with the platform's currency
// prefix. Non-finite input renders as zero.
func FormatAmount(amount float64) string {
	return FormatAmountWith("¥", amount)
}

// FormatAmountWith renders a monetary value with an explicit prefix.
func FormatAmountWith(prefix string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return prefix + "0.00"
	}
	return fmt.Sprintf("%s%.2f", prefix, amount)
}

// FormatPercentage renders a fraction (0.5 → "50.0%") with the given
// number of decimals. Non-finite input renders as "0%".
func FormatPercentage(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0%"
	}
	return fmt.Sprintf("%.*f%%", decimals, value*100)
}

// PeriodDays maps a sales-trend period selector to its day count.
// Unrecognized selectors fall back to a week.
func PeriodDays(period string) int {
	switch period {
	case "7days", "7d":
		return 7
	case "30days", "30d":
		return 30
	case "90days", "90d":
		return 90
	default:
		return 7
	}
}

// Order status codes as the order service reports them.
const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusPending        = "PENDING"
	StatusPaid           = "PAID"
	StatusShipped        = "SHIPPED"
	StatusCompleted      = "COMPLETED"
	StatusCancelled      = "CANCELLED"
	StatusRefundPending  = "REFUND_PENDING"
	StatusRefunded       = "REFUNDED"
)

var orderStatusText = map[string]string{
	StatusPendingPayment: "awaiting payment",
	StatusPending:        "awaiting payment",
	StatusPaid:           "awaiting shipment",
	StatusShipped:        "shipped",
	StatusCompleted:      "completed",
	StatusCancelled:      "cancelled",
	StatusRefundPending:  "refund pending",
	StatusRefunded:       "refunded",
}

var orderStatusSeverity = map[string]string{
	StatusPendingPayment: "warning",
	StatusPending:        "warning",
	StatusPaid:           "primary",
	StatusShipped:        "info",
	StatusCompleted:      "success",
	StatusCancelled:      "danger",
	StatusRefundPending:  "warning",
	StatusRefunded:       "info",
}

// OrderStatusText returns the display label for an order status code.
func OrderStatusText(status string) string {
	if text, ok := orderStatusText[status]; ok {
		return text
	}
	return "unknown"
}

// OrderStatusSeverity returns the display severity tag for a status code.
func OrderStatusSeverity(status string) string {
	if sev, ok := orderStatusSeverity[status]; ok {
		return sev
	}
	return "info"
}

// Order is the slice of an order record the dashboard aggregates over.
type Order struct {
	Status        string  `json:"status"`
	PayableAmount float64 `json:"payableAmount"`
}

// TransactionAmount sums payable amounts across completed orders only.
func TransactionAmount(orders []Order) float64 {
	var total float64
	for _, o := range orders {
		if o.Status != StatusCompleted {
			continue
		}
		if math.IsNaN(o.PayableAmount) || math.IsInf(o.PayableAmount, 0) {
			continue
		}
		total += o.PayableAmount
	}
	return total
}

// FormatDateTime renders a backend timestamp as "2006-01-02 15:04:05".
// Anything unparseable renders as the empty string; the dashboard prefers
// a blank cell over a wrong one.
func FormatDateTime(datetime string) string {
	if datetime == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, datetime); err == nil {
			return t.Format("2006-01-02 15:04:05")
		}
	}
	return ""
}

var shortDatePattern = regexp.MustCompile(`\d{4}-(\d{2}-\d{2})`)

// FormatShortDate extracts the MM-dd portion of a date string, or returns
// the empty string when none is present.
func FormatShortDate(date string) string {
	m := shortDatePattern.FindStringSubmatch(date)
	if m == nil {
		return ""
	}
	return m[1]
}
