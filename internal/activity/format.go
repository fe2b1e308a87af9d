package activity

import (
	"fmt"
	"strings"

	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/wei"
)

// FormatAddress truncates an address to its display form: first six
// characters, an ellipsis, last four.
func FormatAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// FormatRecord renders one feed line.
func FormatRecord(rec *model.ActivityRecord) string {
	return fmt.Sprintf("%s: %s ETH / Address: %s",
		rec.Kind, wei.FormatFixed(rec.AmountWei, 4), FormatAddress(rec.Actor))
}

// FormatFeed renders the whole feed for display, one line per record.
func FormatFeed(records []model.ActivityRecord) string {
	if len(records) == 0 {
		return "no recent activity"
	}
	var b strings.Builder
	b.WriteString("Recent activity:\n")
	for i := range records {
		b.WriteString("  " + FormatRecord(&records[i]) + "\n")
	}
	return b.String()
}
