package domain

import "time"

// CivilOffset is the fixed UTC offset used for every displayed timestamp.
const CivilOffset = 4 * time.Hour

// CivilZone is the fixed UTC+4 zone. Values are stored in UTC and converted
// with this zone only for display and day windows.
var CivilZone = time.FixedZone("UTC+4", int(CivilOffset/time.Second))

// Civil converts t into the civil zone.
func Civil(t time.Time) time.Time {
	return t.In(CivilZone)
}

// CivilDayStart returns midnight of t's civil day.
func CivilDayStart(t time.Time) time.Time {
	c := Civil(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, CivilZone)
}

// WindowStart returns the inclusive lower bound of a trailing window of days
// civil days ending at now.
func WindowStart(now time.Time, days int) time.Time {
	return CivilDayStart(now).AddDate(0, 0, -days)
}
