package render

import (
	"encoding/xml"
	"strconv"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

func funcs(p *message.Printer) template.FuncMap {
	nf := newNumberFormat(p)
	return template.FuncMap{
		"xml":    escape,
		"attr":   attrEscape,
		"markup": markup,
		"money": func(d decimal.Decimal) string {
			return nf.format(d.StringFixed(2))
		},
		"num": func(d decimal.Decimal) string {
			return nf.format(d.String())
		},
	}
}

// numberFormat prints exact decimal strings with the locale's digit grouping
// and decimal separator.
type numberFormat struct {
	p   *message.Printer
	sep string
}

func newNumberFormat(p *message.Printer) numberFormat {
	sample := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	sep := strings.TrimSuffix(strings.TrimPrefix(sample, "1"), "5")
	return numberFormat{p: p, sep: sep}
}

// format takes a plain decimal string such as "-1234.50". Only the integer
// part goes through the printer, so no digits are lost to float conversion.
func (f numberFormat) format(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	out := whole
	if n, err := strconv.ParseUint(whole, 10, 64); err == nil {
		out = f.p.Sprint(number.Decimal(n))
	}
	if frac != "" {
		out += f.sep + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// attrEscape escapes s for an attribute value. Entity references already
// present, such as the &amp; separators of a logo URL, are kept.
func attrEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if entityAt(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// entityAt reports whether s starts with a character or entity reference.
func entityAt(s string) bool {
	end := strings.IndexByte(s, ';')
	if end < 2 {
		return false
	}
	name := s[1:end]
	if name[0] == '#' {
		digits := name[1:]
		base := 10
		if strings.HasPrefix(digits, "x") {
			digits, base = digits[1:], 16
		}
		_, err := strconv.ParseUint(digits, base, 32)
		return digits != "" && err == nil
	}
	switch name {
	case "amp", "lt", "gt", "quot", "apos":
		return true
	}
	return false
}

// markup escapes s but keeps the view-model's line breaks as <br/> elements.
func markup(s string) string {
	parts := strings.Split(s, invoice.HeaderLineBreak)
	for i := range parts {
		parts[i] = escape(parts[i])
	}
	return strings.Join(parts, "<br/>")
}

func printer(locale string) (*message.Printer, error) {
	if locale == "" {
		locale = "en"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag), nil
}
