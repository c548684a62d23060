package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAlgo renders microAlgos as ALGO with six decimals, e.g. "0.899000 ALGO".
// Display only; settlement math never goes through this.
func FormatAlgo(micro uint64) string {
	d := decimal.New(int64(micro), -ALGO_DISPLAY_DECIMALS)
	return d.StringFixed(ALGO_DISPLAY_DECIMALS) + " ALGO"
}

// FormatRemaining renders a remaining duration as "Xm Ys", "Ys" or "Expired"
func FormatRemaining(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return "Expired"
	}

	minutes := seconds / 60
	rest := seconds % 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, rest)
	}
	return fmt.Sprintf("%ds", rest)
}

// CeilMinutes rounds a duration up to whole minutes
func CeilMinutes(d time.Duration) int64 {
	if d < 0 {
		d = -d
	}
	return int64(math.Ceil(d.Minutes()))
}
