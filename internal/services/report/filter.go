// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"codeberg.org/logico/fleet/internal/models"
)

// ErrInvalidFilter is returned when a report kind is given with missing or
// malformed parameters.
var ErrInvalidFilter = errors.New("invalid report filter")

// DateLayout is the format of the fecha parameter.
const DateLayout = "2006-01-02"

var kindNames = map[string]models.ReportKind{
	"DAILY":   models.ReportDaily,
	"DIARIO":  models.ReportDaily,
	"MONTHLY": models.ReportMonthly,
	"MENSUAL": models.ReportMonthly,
	"ANNUAL":  models.ReportAnnual,
	"YEARLY":  models.ReportAnnual,
	"ANUAL":   models.ReportAnnual,
}

// Filter selects movements by creation date. The zero Filter selects all
// movements.
type Filter struct {
	Kind  models.ReportKind
	Year  int
	Month time.Month
	Day   int
}

// Specified reports whether a report kind was given.
func (f Filter) Specified() bool {
	return f.Kind != ""
}

// Range returns the half-open interval [from, to) covered by the filter in loc.
// ok is false for the unfiltered filter.
func (f Filter) Range(loc *time.Location) (from, to time.Time, ok bool) {
	switch f.Kind {
	case models.ReportDaily:
		from = time.Date(f.Year, f.Month, f.Day, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 1), true
	case models.ReportMonthly:
		from = time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0), true
	case models.ReportAnnual:
		from = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// Matches reports whether t falls inside the filter, evaluated in loc.
func (f Filter) Matches(t time.Time, loc *time.Location) bool {
	from, to, ok := f.Range(loc)
	if !ok {
		return true
	}
	return !t.Before(from) && t.Before(to)
}

// Daily returns a filter for one calendar day.
func Daily(year int, month time.Month, day int) Filter {
	return Filter{Kind: models.ReportDaily, Year: year, Month: month, Day: day}
}

// Monthly returns a filter for one calendar month.
func Monthly(year int, month time.Month) Filter {
	return Filter{Kind: models.ReportMonthly, Year: year, Month: month}
}

// Annual returns a filter for one calendar year.
func Annual(year int) Filter {
	return Filter{Kind: models.ReportAnnual, Year: year}
}

// ParseFilter builds a filter from the tipo, fecha, mes and anio query
// parameters. An empty or unknown tipo yields the unfiltered filter.
func ParseFilter(tipo, fecha, mes, anio string) (Filter, error) {
	kind, ok := kindNames[strings.ToUpper(strings.TrimSpace(tipo))]
	if !ok {
		return Filter{}, nil
	}

	switch kind {
	case models.ReportDaily:
		day, err := time.Parse(DateLayout, strings.TrimSpace(fecha))
		if err != nil {
			return Filter{}, fmt.Errorf("%w: fecha must be YYYY-MM-DD", ErrInvalidFilter)
		}
		return Daily(day.Year(), day.Month(), day.Day()), nil

	case models.ReportMonthly:
		year, err := parseYear(anio)
		if err != nil {
			return Filter{}, err
		}
		month, err := strconv.Atoi(strings.TrimSpace(mes))
		if err != nil || month < 1 || month > 12 {
			return Filter{}, fmt.Errorf("%w: mes must be between 1 and 12", ErrInvalidFilter)
		}
		return Monthly(year, time.Month(month)), nil

	default:
		year, err := parseYear(anio)
		if err != nil {
			return Filter{}, err
		}
		return Annual(year), nil
	}
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: anio must be a year between 1 and 9999", ErrInvalidFilter)
	}
	return year, nil
}
