package models

import "time"

const DateKeyLayout = "2006-01-02"

// DateOf strips the clock and location from t. Every date used as a map key
// in the stat tree goes through here, so keys compare equal.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsoWeekday numbers Monday as 1 through Sunday as 7.
func IsoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Week returns the bucket key of the week containing d: d minus its iso
// weekday. A Sunday therefore maps to the Sunday seven days earlier.
func Week(d time.Time) time.Time {
	d = DateOf(d)
	return d.AddDate(0, 0, -IsoWeekday(d))
}

// Month returns the bucket key of d's month: its last calendar day.
func Month(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), DaysInMonth(d), 0, 0, 0, 0, time.UTC)
}

func DaysInMonth(d time.Time) int {
	// day 0 of the next month is the last day of this one
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func FormatDate(d time.Time) string {
	return d.Format(DateKeyLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateKeyLayout, s)
}
