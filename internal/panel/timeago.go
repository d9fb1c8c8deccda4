package panel

import (
	"fmt"
	"time"
)

// TimeAgo renders a coarse relative label for a timestamp. Thresholds are
// floor-divided on whole seconds elapsed; anything a week or older falls back
// to an absolute date without a time-of-day component.
func TimeAgo(now, t time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 60*60:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 24*60*60:
		return fmt.Sprintf("%dh ago", seconds/(60*60))
	case seconds < 7*24*60*60:
		return fmt.Sprintf("%dd ago", seconds/(24*60*60))
	default:
		return t.Format("Jan 2, 2006")
	}
}
