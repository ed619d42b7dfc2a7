package darkstat

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/spf13/cast"
)

// Bucket label layouts
const (
	MinuteLayout = "02-01-2006 15:04:05"
	HourLayout   = "02-01-2006 15:04:05"
	DayLayout    = "02-01-2006"
)

// minuteWindow is the length of the minutes graph; entry i is 59-i minutes old
const minuteWindow = 60

type graphsDoc struct {
	Minutes []graphSeries `xml:"minutes"`
	Hours   []graphSeries `xml:"hours"`
	Days    []graphSeries `xml:"days"`
}

type graphSeries struct {
	Entries []graphEntry `xml:"e"`
}

type graphEntry struct {
	Period string `xml:"p,attr"`
	In     string `xml:"i,attr"`
	Out    string `xml:"o,attr"`
}

type parsedEntry struct {
	period int
	in     int64
	out    int64
}

// ParseSeries dispatches to the parser for kind
func ParseSeries(kind model.SeriesKind, doc string, now time.Time) ([]model.TimeBucket, error) {
	switch kind {
	case model.SeriesMinutes:
		return ParseMinutes(doc, now)
	case model.SeriesHours:
		return ParseHours(doc, now)
	case model.SeriesDays:
		return ParseDays(doc, now)
	default:
		return nil, fmt.Errorf("unknown series %q", kind)
	}
}

// ParseMinutes dates the minutes graph backwards from now: entry i is 59-i
// minutes old, truncated to the minute.
func ParseMinutes(doc string, now time.Time) ([]model.TimeBucket, error) {
	graphs, err := decodeGraphs(doc)
	if err != nil {
		return nil, err
	}

	base := now.Truncate(time.Minute)
	buckets := []model.TimeBucket{}
	for _, series := range graphs.Minutes {
		entries, err := parseEntries(series, false)
		if err != nil {
			return nil, err
		}
		for i, e := range entries {
			at := base.Add(-time.Duration(minuteWindow-1-i) * time.Minute)
			buckets = append(buckets, newBucket(at, MinuteLayout, e))
		}
	}
	return buckets, nil
}

// ParseHours dates the hours graph. Entries before the first hour 0 belong to
// yesterday, the rest to today.
func ParseHours(doc string, now time.Time) ([]model.TimeBucket, error) {
	graphs, err := decodeGraphs(doc)
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	buckets := []model.TimeBucket{}
	encounteredZero := false
	for _, series := range graphs.Hours {
		entries, err := parseEntries(series, true)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.period < 0 || e.period > 23 {
				return nil, fmt.Errorf("%w: hour %d out of range", ErrMalformedSeries, e.period)
			}
			if e.period == 0 {
				encounteredZero = true
			}

			day := yesterday
			if encounteredZero {
				day = today
			}
			at := time.Date(day.Year(), day.Month(), day.Day(), e.period, 0, 0, 0, now.Location())
			buckets = append(buckets, newBucket(at, HourLayout, e))
		}
	}
	return buckets, nil
}

// ParseDays dates the days graph. Entries before the first day 1 belong to
// the previous calendar month, the rest to the current one. Previous-month
// entries naming a day that month does not have are stale and dropped.
func ParseDays(doc string, now time.Time) ([]model.TimeBucket, error) {
	graphs, err := decodeGraphs(doc)
	if err != nil {
		return nil, err
	}

	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonth := thisMonth.AddDate(0, -1, 0)

	buckets := []model.TimeBucket{}
	encountered := false
	for _, series := range graphs.Days {
		entries, err := parseEntries(series, true)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.period < 1 || e.period > 31 {
				return nil, fmt.Errorf("%w: day %d out of range", ErrMalformedSeries, e.period)
			}
			if e.period == 1 {
				encountered = true
			}

			month := prevMonth
			if encountered {
				month = thisMonth
			}
			at := time.Date(month.Year(), month.Month(), e.period, 0, 0, 0, 0, now.Location())
			if at.Month() != month.Month() {
				log.Debug("Dropping stale day bucket", "day", e.period, "month", month.Month().String())
				continue
			}
			buckets = append(buckets, newBucket(at, DayLayout, e))
		}
	}
	return buckets, nil
}

func decodeGraphs(doc string) (*graphsDoc, error) {
	var graphs graphsDoc
	if err := xml.NewDecoder(strings.NewReader(doc)).Decode(&graphs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeries, err)
	}
	return &graphs, nil
}

func parseEntries(series graphSeries, needPeriod bool) ([]parsedEntry, error) {
	entries := make([]parsedEntry, 0, len(series.Entries))
	for i, raw := range series.Entries {
		var e parsedEntry
		var err error

		if e.in, err = parseCounter(raw.In); err != nil {
			return nil, fmt.Errorf("%w: entry %d: in: %v", ErrMalformedSeries, i, err)
		}
		if e.out, err = parseCounter(raw.Out); err != nil {
			return nil, fmt.Errorf("%w: entry %d: out: %v", ErrMalformedSeries, i, err)
		}
		if needPeriod {
			if e.period, err = cast.ToIntE(strings.TrimSpace(raw.Period)); err != nil || raw.Period == "" {
				return nil, fmt.Errorf("%w: entry %d: invalid period %q", ErrMalformedSeries, i, raw.Period)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func newBucket(at time.Time, layout string, e parsedEntry) model.TimeBucket {
	return model.TimeBucket{
		Label:      at.Format(layout),
		At:         at,
		BytesIn:    e.in,
		BytesOut:   e.out,
		BytesTotal: e.in + e.out,
	}
}
