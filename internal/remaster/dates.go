package remaster

import (
	"fmt"
	"time"
)

// DateLayout is the calendar format used for tip dates, matching the
// date-trait layout BEAST2 templates expect.
const DateLayout = "2006/01/02"

// DefaultStartDate anchors simulation time zero when no start date is given.
const DefaultStartDate = "2000/01/01"

// daysPerYear converts simulation years to whole days. Fractional days are
// truncated, not rounded.
const daysPerYear = 365

// TimesToDates converts relative simulation times (in years) to calendar
// date strings anchored at start, which must be in YYYY/MM/DD form.
func TimesToDates(times map[string]float64, start string) (map[string]string, error) {
	if start == "" {
		start = DefaultStartDate
	}

	anchor, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", start, err)
	}

	dates := make(map[string]string, len(times))

	for taxon, relTime := range times {
		days := int(relTime * daysPerYear)
		dates[taxon] = anchor.AddDate(0, 0, days).Format(DateLayout)
	}

	return dates, nil
}
