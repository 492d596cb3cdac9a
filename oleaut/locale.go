package oleaut

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// dateEpoch is the automation DATE zero point (1899-12-30T00:00:00 UTC);
// DATE values count days from it.
var dateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Locale is the formatting service the emulator's to-string primitives
// use. The invariant locale formats with strconv, which round-trips
// through the parse primitives; named locales format with
// golang.org/x/text and are display-oriented.
type Locale struct {
	tag       language.Tag
	printer   *message.Printer
	invariant bool
}

// InvariantLocale returns the locale-independent formatter.
func InvariantLocale() *Locale {
	return &Locale{invariant: true}
}

// NewLocale returns a formatter for the given language tag.
func NewLocale(tag language.Tag) *Locale {
	return &Locale{
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// Tag returns the locale's language tag; the invariant locale reports
// language.Und.
func (l *Locale) Tag() language.Tag {
	if l.invariant {
		return language.Und
	}
	return l.tag
}

func (l *Locale) formatInt(v int64) string {
	if l.invariant {
		return strconv.FormatInt(v, 10)
	}
	return l.printer.Sprint(number.Decimal(v))
}

func (l *Locale) formatUint(v uint64) string {
	if l.invariant {
		return strconv.FormatUint(v, 10)
	}
	return l.printer.Sprint(number.Decimal(v))
}

func (l *Locale) formatFloat(v float64) string {
	if l.invariant {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return l.printer.Sprint(number.Decimal(v))
}

// formatCurrency renders a CY payload (integer scaled by 1e4) with its
// natural number of decimals.
func (l *Locale) formatCurrency(v int64) string {
	f := float64(v) / 1e4
	if l.invariant {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return l.printer.Sprint(number.Decimal(f))
}

// formatBool renders the foreign boolean spellings.
func (l *Locale) formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// formatDate renders a DATE payload as a calendar timestamp. Fractional
// days are clock time.
func (l *Locale) formatDate(days float64) string {
	t := dateEpoch.Add(time.Duration(days * float64(24*time.Hour)))
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
