package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// HeaderLineBreak separates address lines in the header addresses.
	HeaderLineBreak = "<br />"
	// FooterLineBreak separates address lines in the footer address.
	FooterLineBreak = ", "
)

// NormalizeLineBreaks replaces every CRLF, CR and LF in s with sep.
// CRLF counts as one break.
func NormalizeLineBreaks(s, sep string) string {
	return strings.NewReplacer("\r\n", sep, "\r", sep, "\n", sep).Replace(s)
}

// LogoURL builds the absolute logo URL from the file's relative URL on the
// application domain. Ampersands are entity-encoded for the XML template.
func LogoURL(domain, relative string) string {
	return "https://" + domain + strings.ReplaceAll(relative, "&", "&amp;")
}

// TaxPercent formats a tax rate as a percentage string, e.g. "19%".
func TaxPercent(rate decimal.Decimal) string {
	return rate.String() + "%"
}

// DateFormat renders calendar dates with a fixed layout. Location is the
// zone "today" is taken in; record dates are already calendar dates and are
// printed as stored.
type DateFormat struct {
	Layout   string
	Location *time.Location
}

// DefaultDateFormat is month/day/year in UTC.
var DefaultDateFormat = DateFormat{Layout: "1/2/2006", Location: time.UTC}

// Format renders a calendar date.
func (f DateFormat) Format(t time.Time) string {
	layout := f.Layout
	if layout == "" {
		layout = DefaultDateFormat.Layout
	}
	return t.Format(layout)
}

// Today renders the calendar date of now in the configured location.
func (f DateFormat) Today(now time.Time) string {
	if f.Location != nil {
		now = now.In(f.Location)
	}
	return f.Format(now)
}
