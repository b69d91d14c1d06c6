package render

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Layout is a parsed invoice layout document.
type Layout struct {
	Title       string
	Size        string
	Orientation string
	Footer      string
	Blocks      []Block
}

// Block is a top-level layout element, drawn in document order.
type Block interface {
	block()
}

// Image places a picture at the current position.
type Image struct {
	Src   string
	Width float64
}

// Heading is a bold title line.
type Heading struct {
	Text string
}

// Text is a paragraph. Line breaks come from <br/> elements.
type Text struct {
	Text  string
	Size  float64
	Bold  bool
	Align string
}

// Spacer adds vertical space.
type Spacer struct {
	Height float64
}

// Table is a grid of cells. Widths are relative and scaled to the page.
type Table struct {
	Widths []float64
	Border bool
	Rows   []Row
}

// Row is one table row. Header rows are repeated after a page break.
type Row struct {
	Header bool
	Cells  []Cell
}

// Cell is one table cell.
type Cell struct {
	Text  string
	Align string
	Bold  bool
}

func (Image) block()   {}
func (Heading) block() {}
func (Text) block()    {}
func (Spacer) block()  {}
func (Table) block()   {}

// ParseLayout reads a layout document.
func ParseLayout(r io.Reader) (*Layout, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no document element")
		}
		if err != nil {
			return nil, errors.Wrap(err, "read token")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "document" {
			return nil, errors.Errorf("unexpected root element %q", start.Name.Local)
		}
		return parseDocument(dec, start)
	}
}

func parseDocument(dec *xml.Decoder, start xml.StartElement) (*Layout, error) {
	l := &Layout{
		Title:       attr(start, "title"),
		Size:        attrOr(start, "size", "A4"),
		Orientation: attrOr(start, "orientation", "P"),
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "read document")
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return l, nil
		case xml.StartElement:
			if t.Name.Local == "footer" {
				text, err := readText(dec)
				if err != nil {
					return nil, errors.Wrap(err, "footer")
				}
				l.Footer = text
				continue
			}
			b, err := parseBlock(dec, t)
			if err != nil {
				return nil, errors.Wrap(err, t.Name.Local)
			}
			l.Blocks = append(l.Blocks, b)
		}
	}
}

func parseBlock(dec *xml.Decoder, start xml.StartElement) (Block, error) {
	switch start.Name.Local {
	case "image":
		w, err := floatAttr(start, "width", 0)
		if err != nil {
			return nil, err
		}
		return Image{Src: attr(start, "src"), Width: w}, dec.Skip()
	case "heading":
		text, err := readText(dec)
		if err != nil {
			return nil, err
		}
		return Heading{Text: text}, nil
	case "text":
		size, err := floatAttr(start, "size", 0)
		if err != nil {
			return nil, err
		}
		text, err := readText(dec)
		if err != nil {
			return nil, err
		}
		return Text{
			Text:  text,
			Size:  size,
			Bold:  attr(start, "bold") == "true",
			Align: alignAttr(start),
		}, nil
	case "spacer":
		h, err := floatAttr(start, "height", 4)
		if err != nil {
			return nil, err
		}
		return Spacer{Height: h}, dec.Skip()
	case "table":
		return parseTable(dec, start)
	default:
		return nil, errors.Errorf("unknown element %q", start.Name.Local)
	}
}

func parseTable(dec *xml.Decoder, start xml.StartElement) (Block, error) {
	t := Table{Border: attr(start, "border") == "true"}
	for _, s := range strings.Split(attr(start, "widths"), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		w, err := strconv.ParseFloat(s, 64)
		if err != nil || w <= 0 {
			return nil, errors.Errorf("invalid width %q", s)
		}
		t.Widths = append(t.Widths, w)
	}
	if len(t.Widths) == 0 {
		return nil, errors.New("widths required")
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "read table")
		}
		switch el := tok.(type) {
		case xml.EndElement:
			return t, nil
		case xml.StartElement:
			if el.Name.Local != "row" {
				return nil, errors.Errorf("unexpected %q in table", el.Name.Local)
			}
			row, err := parseRow(dec, el)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", len(t.Rows))
			}
			if len(row.Cells) > len(t.Widths) {
				return nil, errors.Errorf("row %d has %d cells, table has %d columns",
					len(t.Rows), len(row.Cells), len(t.Widths))
			}
			t.Rows = append(t.Rows, row)
		}
	}
}

func parseRow(dec *xml.Decoder, start xml.StartElement) (Row, error) {
	row := Row{Header: attr(start, "header") == "true"}
	for {
		tok, err := dec.Token()
		if err != nil {
			return row, errors.Wrap(err, "read row")
		}
		switch el := tok.(type) {
		case xml.EndElement:
			return row, nil
		case xml.StartElement:
			if el.Name.Local != "cell" {
				return row, errors.Errorf("unexpected %q in row", el.Name.Local)
			}
			text, err := readText(dec)
			if err != nil {
				return row, err
			}
			row.Cells = append(row.Cells, Cell{
				Text:  text,
				Align: alignAttr(el),
				Bold:  row.Header || attr(el, "bold") == "true",
			})
		}
	}
}

// readText collects character data up to the end of the current element.
// Whitespace runs collapse to one space; <br/> starts a new line.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", errors.Wrap(err, "read text")
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.WriteString(collapse(string(t)))
		case xml.StartElement:
			if t.Name.Local != "br" {
				return "", errors.Errorf("unexpected %q in text", t.Name.Local)
			}
			if err := dec.Skip(); err != nil {
				return "", err
			}
			b.WriteByte('\n')
		case xml.EndElement:
			lines := strings.Split(b.String(), "\n")
			for i := range lines {
				lines[i] = strings.TrimSpace(lines[i])
			}
			return strings.Join(lines, "\n"), nil
		}
	}
}

func collapse(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrOr(el xml.StartElement, name, def string) string {
	if v := attr(el, name); v != "" {
		return v
	}
	return def
}

func floatAttr(el xml.StartElement, name string, def float64) (float64, error) {
	v := attr(el, name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "attribute %s", name)
	}
	return f, nil
}

func alignAttr(el xml.StartElement) string {
	switch strings.ToLower(attr(el, "align")) {
	case "right", "r":
		return "R"
	case "center", "c":
		return "C"
	default:
		return "L"
	}
}
