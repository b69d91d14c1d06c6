package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		sep  string
		want string
	}{
		{name: "lf", in: "a\nb", sep: HeaderLineBreak, want: "a<br />b"},
		{name: "cr", in: "a\rb", sep: HeaderLineBreak, want: "a<br />b"},
		{name: "crlf is one break", in: "a\r\nb", sep: HeaderLineBreak, want: "a<br />b"},
		{name: "lfcr is two breaks", in: "a\n\rb", sep: HeaderLineBreak, want: "a<br /><br />b"},
		{name: "mixed", in: "a\r\nb\nc\rd", sep: FooterLineBreak, want: "a, b, c, d"},
		{name: "trailing", in: "a\n", sep: FooterLineBreak, want: "a, "},
		{name: "no breaks", in: "plain", sep: HeaderLineBreak, want: "plain"},
		{name: "empty", in: "", sep: HeaderLineBreak, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLineBreaks(tt.in, tt.sep))
		})
	}
}

func TestNormalizeLineBreaks_Idempotent(t *testing.T) {
	for _, sep := range []string{HeaderLineBreak, FooterLineBreak} {
		once := NormalizeLineBreaks("Street 1\r\nCity\nCountry", sep)
		assert.Equal(t, once, NormalizeLineBreaks(once, sep))
	}
}

func TestLogoURL(t *testing.T) {
	got := LogoURL("1234567.app.netsuite.com", "/core/media/media.nl?id=5&c=123")
	assert.Equal(t, "https://1234567.app.netsuite.com/core/media/media.nl?id=5&amp;c=123", got)

	got = LogoURL("host", "/a?x=1&y=2&z=3")
	assert.Equal(t, "https://host/a?x=1&amp;y=2&amp;z=3", got)
}

func TestTaxPercent(t *testing.T) {
	assert.Equal(t, "19%", TaxPercent(d("19")))
	assert.Equal(t, "7.5%", TaxPercent(d("7.50")))
	assert.Equal(t, "0%", TaxPercent(d("0")))
}

func TestDateFormat(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := DateFormat{Layout: "02.01.2006", Location: berlin}

	// 23:30 UTC is already the next day in Berlin.
	now := time.Date(2024, time.December, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "01.01.2025", f.Today(now))

	// Record dates are printed as stored.
	tranDate := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "31.12.2024", f.Format(tranDate))

	assert.Equal(t, "12/31/2024", DateFormat{}.Format(tranDate))
}
