package performance

import (
	"fmt"
	"time"
)

// bucketKey maps an entry date to its calendar window key. Keys sort
// chronologically as strings for every granularity.
func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
	case GranularityYear:
		return t.Format("2006")
	default:
		return "all"
	}
}
