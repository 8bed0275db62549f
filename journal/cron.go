package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// pruneSchedule is a validated retention schedule. Schedules are
// five-field cron expressions evaluated in UTC only, so a host and its
// journal never disagree about when retention ran.
type pruneSchedule struct {
	schedule cron.Schedule
}

var pruneCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

func parsePruneSchedule(expr string) (*pruneSchedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("journal: prune schedule is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("journal: prune schedule must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := pruneCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("journal: invalid prune schedule: %w", err)
	}
	return &pruneSchedule{schedule: schedule}, nil
}

// next returns the first run strictly after now, evaluated in UTC.
func (p *pruneSchedule) next(now time.Time) time.Time {
	return p.schedule.Next(now.UTC())
}
