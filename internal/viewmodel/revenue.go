package viewmodel

import (
	"sort"
	"time"

	"github.com/azoai/botadmin/internal/store"
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RevenueBucket aggregates transaction amounts for one weekday label.
type RevenueBucket struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// RevenueByWeekday buckets transactions by the weekday of their creation
// time, local time. Buckets are keyed by weekday name only: rows from
// different calendar weeks land in the same bucket. The dashboard chart
// renders a weekday shape, not a week; OrderTimeline is the week-bounded
// view.
func RevenueByWeekday(transactions []store.Transaction) []RevenueBucket {
	buckets := make([]RevenueBucket, len(weekdayLabels))
	for i, label := range weekdayLabels {
		buckets[i].Day = label
	}
	for _, tx := range transactions {
		idx := int(tx.CreatedAt.Local().Weekday())
		buckets[idx].Total += tx.Amount
		buckets[idx].Count++
	}
	return buckets
}

// CategoryCount is the size of one transaction category group.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const fallbackCategory = "Other"

// CategoryBreakdown groups transactions by category, counting occurrences.
// Uncategorized rows fall into "Other"; an empty input yields a single empty
// placeholder group so the pie chart always has something to draw.
func CategoryBreakdown(transactions []store.Transaction) []CategoryCount {
	if len(transactions) == 0 {
		return []CategoryCount{{Name: fallbackCategory, Count: 0}}
	}
	counts := make(map[string]int)
	for _, tx := range transactions {
		name := tx.Category
		if name == "" {
			name = fallbackCategory
		}
		counts[name]++
	}
	breakdown := make([]CategoryCount, 0, len(counts))
	for name, count := range counts {
		breakdown = append(breakdown, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

// TimelinePoint is one day of the trailing-week order chart.
type TimelinePoint struct {
	Day   string  `json:"day"`
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// OrderTimeline sums completed-order amounts into one zero-filled point per
// calendar day for the trailing seven days, oldest first. Unlike
// RevenueByWeekday this is keyed by date, so weeks do not collapse.
func OrderTimeline(orders []store.Order, now time.Time) []TimelinePoint {
	points := make([]TimelinePoint, 0, 7)
	index := make(map[string]int, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		key := day.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, TimelinePoint{
			Day:  weekdayLabels[int(day.Weekday())],
			Date: key,
		})
	}
	for _, order := range orders {
		key := order.CreatedAt.Local().Format("2006-01-02")
		if i, ok := index[key]; ok {
			points[i].Total += order.TotalAmount
		}
	}
	return points
}
