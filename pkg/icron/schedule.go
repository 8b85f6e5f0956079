package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type TriggerInfo struct {
	Next       time.Time `json:"next"`
	Last       time.Time `json:"last"`
	Expression string    `json:"expression"`

	TimeSinceLast time.Duration `json:"time_since_last"`
	TimeUntilNext time.Duration `json:"time_until_next"`
}

// GetTriggerInfo reports the previous and next firing times of a standard
// five-field cron expression relative to refTime. Last stays zero when the
// expression did not fire within the past year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	nextTime := schedule.Next(refTime)

	var prevTime time.Time
	searchStart := refTime.Add(-time.Minute)
	for i := 0; i < 366*24; i++ {
		candidate := schedule.Next(searchStart.Add(-time.Duration(i) * time.Hour))
		if candidate.After(refTime) {
			continue
		}
		// walk forward to the latest firing that is not after refTime
		prevTime = candidate
		for n := schedule.Next(candidate); !n.After(refTime); n = schedule.Next(n) {
			prevTime = n
		}
		break
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       nextTime,
		Last:       prevTime,
	}
	if !prevTime.IsZero() {
		info.TimeSinceLast = refTime.Sub(prevTime)
	}
	info.TimeUntilNext = nextTime.Sub(refTime)

	return info, nil
}
