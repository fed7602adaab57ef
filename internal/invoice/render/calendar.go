package render

import (
	"fmt"
	"strings"
	"time"
)

// DateMode selects the calendar used for printed dates.
type DateMode string

const (
	DateModeGregorian DateMode = "gregorian"
	DateModeHijri     DateMode = "hijri"
	DateModeBoth      DateMode = "both"
)

// ParseDateMode falls back to gregorian for unknown values.
func ParseDateMode(value string) DateMode {
	switch DateMode(strings.ToLower(strings.TrimSpace(value))) {
	case DateModeHijri:
		return DateModeHijri
	case DateModeBoth:
		return DateModeBoth
	default:
		return DateModeGregorian
	}
}

// HijriDate is a date in the tabular Islamic calendar.
type HijriDate struct {
	Year  int
	Month int
	Day   int
}

// ToHijri converts the calendar day of t (in t's location) using the
// arithmetical Islamic calendar with the civil epoch. It can differ by a day
// from sighting-based calendars.
func ToHijri(t time.Time) HijriDate {
	jd := julianDayNumber(t.Year(), int(t.Month()), t.Day())

	l := jd - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30

	return HijriDate{Year: year, Month: month, Day: day}
}

func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

var hijriMonths = map[string][12]string{
	"en": {"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani", "Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban", "Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah"},
	"ar": {"محرم", "صفر", "ربيع الأول", "ربيع الآخر", "جمادى الأولى", "جمادى الآخرة", "رجب", "شعبان", "رمضان", "شوال", "ذو القعدة", "ذو الحجة"},
}

// FormatHijri renders d as "24 Shaban 1445 AH".
func FormatHijri(d HijriDate, lang string) string {
	months, ok := hijriMonths[lang]
	if !ok {
		months = hijriMonths["en"]
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
	}
	suffix := "AH"
	if lang == "ar" {
		suffix = "هـ"
	}
	return fmt.Sprintf("%d %s %d %s", d.Day, months[d.Month-1], d.Year, suffix)
}

// FormatDate renders t in the requested calendar mode.
func FormatDate(t time.Time, mode DateMode, lang string) string {
	if t.IsZero() {
		return "-"
	}
	gregorian := t.Format("2006-01-02")
	switch mode {
	case DateModeHijri:
		return FormatHijri(ToHijri(t), lang)
	case DateModeBoth:
		return gregorian + " / " + FormatHijri(ToHijri(t), lang)
	default:
		return gregorian
	}
}
