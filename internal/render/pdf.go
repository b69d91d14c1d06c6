package render

import (
	"bytes"
	"context"
	_ "embed"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/jung-kurt/gofpdf"
)

// Embedded DejaVu Sans faces. They cover Latin Extended, Greek and Cyrillic.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const (
	fontFamily   = "DejaVu"
	baseFontSize = 9.0
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	marginBottom = 22.0
	cellPadding  = 1.0
)

func lineHeight(size float64) float64 {
	return size * 0.5
}

type drawer struct {
	pdf    *gofpdf.Fpdf
	images ImageLoader
	width  float64
}

func draw(ctx context.Context, l *Layout, images ImageLoader) ([]byte, error) {
	if err := checkLayoutText(l); err != nil {
		return nil, err
	}

	pdf := gofpdf.New(l.Orientation, "mm", l.Size, "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(l.Title, true)
	pdf.SetCreator("commercial-invoice", true)
	// The page alias must be set before UTF-8 fonts are added.
	pdf.AliasNbPages("")
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "load fonts")
	}

	pageW, _ := pdf.GetPageSize()
	d := &drawer{
		pdf:    pdf,
		images: images,
		width:  pageW - marginLeft - marginRight,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-marginBottom + 4)
		pdf.SetFont(fontFamily, "", 7)
		if l.Footer != "" {
			pdf.MultiCell(0, 3, l.Footer, "T", "C", false)
		}
		pdf.CellFormat(0, 4, "Page "+strconv.Itoa(pdf.PageNo())+" / {nb}", "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	for i, b := range l.Blocks {
		if err := d.block(ctx, b); err != nil {
			return nil, errors.Wrapf(err, "block %d", i)
		}
		if err := pdf.Error(); err != nil {
			return nil, errors.Wrapf(err, "block %d", i)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "output")
	}
	return buf.Bytes(), nil
}

func (d *drawer) block(ctx context.Context, b Block) error {
	switch b := b.(type) {
	case Heading:
		d.pdf.SetFont(fontFamily, "B", 14)
		d.pdf.MultiCell(0, lineHeight(14), b.Text, "", "L", false)
	case Text:
		size := b.Size
		if size == 0 {
			size = baseFontSize
		}
		style := ""
		if b.Bold {
			style = "B"
		}
		d.pdf.SetFont(fontFamily, style, size)
		d.pdf.MultiCell(0, lineHeight(size), b.Text, "", b.Align, false)
	case Spacer:
		d.pdf.Ln(b.Height)
	case Image:
		return d.image(ctx, b)
	case Table:
		d.table(b)
	default:
		return errors.Errorf("unsupported block %T", b)
	}
	return nil
}

func (d *drawer) image(ctx context.Context, img Image) error {
	if img.Src == "" {
		return nil
	}
	if d.images == nil {
		return errors.New("no image loader")
	}
	pic, err := d.images.Load(ctx, img.Src)
	if err != nil {
		return errors.Wrapf(err, "load image %q", img.Src)
	}

	opts := gofpdf.ImageOptions{ImageType: pic.Type}
	name := "img:" + img.Src
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pic.Data))
	d.pdf.ImageOptions(name, d.pdf.GetX(), 0, img.Width, 0, true, opts, 0, "")
	return d.pdf.Error()
}

func (d *drawer) table(t Table) {
	var total float64
	for _, w := range t.Widths {
		total += w
	}
	widths := make([]float64, len(t.Widths))
	for i, w := range t.Widths {
		widths[i] = w / total * d.width
	}

	var header []Row
	for _, row := range t.Rows {
		if row.Header {
			header = append(header, row)
		}
	}

	_, pageH := d.pdf.GetPageSize()
	for _, row := range t.Rows {
		h := d.rowHeight(row, widths)
		if d.pdf.GetY()+h > pageH-marginBottom {
			d.pdf.AddPage()
			if !row.Header {
				for _, hr := range header {
					d.row(hr, widths, d.rowHeight(hr, widths), t.Border)
				}
			}
		}
		d.row(row, widths, h, t.Border)
	}
}

func (d *drawer) rowHeight(row Row, widths []float64) float64 {
	lines := 1
	for i, c := range row.Cells {
		d.cellFont(c)
		n := 0
		for _, para := range strings.Split(c.Text, "\n") {
			n += max(1, len(d.pdf.SplitText(para, widths[i]-2*cellPadding)))
		}
		lines = max(lines, n)
	}
	return float64(lines)*lineHeight(baseFontSize) + 2*cellPadding
}

func (d *drawer) row(row Row, widths []float64, h float64, border bool) {
	x, y := marginLeft, d.pdf.GetY()
	for i, w := range widths {
		switch {
		case row.Header:
			d.pdf.SetFillColor(230, 230, 230)
			d.pdf.Rect(x, y, w, h, "F")
			if border {
				d.pdf.Rect(x, y, w, h, "D")
			}
		case border:
			d.pdf.Rect(x, y, w, h, "D")
		}
		if i < len(row.Cells) {
			c := row.Cells[i]
			d.cellFont(c)
			d.pdf.SetXY(x+cellPadding, y+cellPadding)
			d.pdf.MultiCell(w-2*cellPadding, lineHeight(baseFontSize), c.Text, "", c.Align, false)
		}
		x += w
	}
	d.pdf.SetXY(marginLeft, y+h)
}

func (d *drawer) cellFont(c Cell) {
	style := ""
	if c.Bold {
		style = "B"
	}
	d.pdf.SetFont(fontFamily, style, baseFontSize)
}

// checkLayoutText rejects text the embedded fonts cannot encode. gofpdf maps
// glyphs through a 16-bit table, so characters outside the Basic Multilingual
// Plane and invalid UTF-8 would be dropped or corrupt the page.
func checkLayoutText(l *Layout) error {
	check := func(where, s string) error {
		if !utf8.ValidString(s) {
			return errors.Errorf("%s: invalid UTF-8", where)
		}
		for _, r := range s {
			if r > 0xFFFF {
				return errors.Errorf("%s: character %U cannot be printed", where, r)
			}
		}
		return nil
	}

	if err := check("title", l.Title); err != nil {
		return err
	}
	if err := check("footer", l.Footer); err != nil {
		return err
	}
	for i, b := range l.Blocks {
		var err error
		switch b := b.(type) {
		case Heading:
			err = check("heading", b.Text)
		case Text:
			err = check("text", b.Text)
		case Table:
			for _, row := range b.Rows {
				for _, c := range row.Cells {
					if err = check("cell", c.Text); err != nil {
						break
					}
				}
				if err != nil {
					break
				}
			}
		}
		if err != nil {
			return errors.Wrapf(err, "block %d", i)
		}
	}
	return nil
}
