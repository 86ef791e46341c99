// Package locale renders dates the way the dashboard displays them.
package locale

import (
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// DateFormatter stamps records with a locale-formatted calendar date.
type DateFormatter struct {
	locale string
	now    func() time.Time
}

// NewDateFormatter builds a formatter. A nil clock uses time.Now.
func NewDateFormatter(locale string, now func() time.Time) *DateFormatter {
	if now == nil {
		now = time.Now
	}
	return &DateFormatter{locale: locale, now: now}
}

// Today formats the current date.
func (f *DateFormatter) Today() string {
	return f.Format(f.now())
}

// Format renders t as a short date. fa-IR uses the Jalali calendar with
// Persian digits and no zero padding, e.g. ۱۴۰۵/۷/۲۵.
func (f *DateFormatter) Format(t time.Time) string {
	switch strings.ToLower(f.locale) {
	case "fa-ir", "fa":
		pt := ptime.New(t)
		return persianDigits.Replace(fmt.Sprintf("%d/%d/%d", pt.Year(), int(pt.Month()), pt.Day()))
	case "en-us", "en":
		return t.Format("1/2/2006")
	default:
		return t.Format("2006-01-02")
	}
}
