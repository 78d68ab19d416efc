package docx

import (
	"html"
	"strconv"
	"strings"
)

const (
	// ContainerClass is the class of the <div> wrapping a rendered body.
	ContainerClass = "code-of-conduct-content"
	// TableClass is the class of every rendered <table>.
	TableClass = "table table-bordered"

	headingPrefix       = "Heading"
	defaultHeadingLevel = 2
	bulletMarker        = "• "
	lineBreak           = "<br/>"
)

// RenderBody renders body elements in order and sums their words.
// Elements other than paragraphs and tables are ignored.
func RenderBody(elements []BodyElement) (string, int) {
	var b strings.Builder
	words := 0

	b.WriteString(`<div class="` + ContainerClass + `">` + "\n")
	for _, el := range elements {
		var (
			out string
			n   int
		)
		switch el.Kind {
		case KindParagraph:
			if el.Paragraph == nil {
				continue
			}
			out, n = RenderParagraph(*el.Paragraph)
		case KindTable:
			if el.Table == nil {
				continue
			}
			out, n = RenderTable(*el.Table)
		default:
			continue
		}
		b.WriteString(out)
		b.WriteString("\n")
		words += n
	}
	b.WriteString("</div>\n")

	return b.String(), words
}

// RenderParagraph renders one paragraph as <p>, <hN> or <br/>.
func RenderParagraph(p Paragraph) (string, int) {
	level, isHeading := headingLevel(p.Props)

	var text strings.Builder
	words := 0
	for _, run := range p.Runs {
		style := runStyle(run.Props)
		for _, t := range run.Texts {
			words += CountWords(t.Value)
			escaped := html.EscapeString(t.Value)
			if style != "" {
				text.WriteString(`<span style="` + style + `">` + escaped + `</span>`)
			} else {
				text.WriteString(escaped)
			}
		}
	}

	content := text.String()
	if strings.TrimSpace(content) == "" {
		return lineBreak, 0
	}
	if isListItem(p.Props) {
		content = bulletMarker + content
	}

	if isHeading {
		tag := "h" + strconv.Itoa(level)
		return "<" + tag + ">" + content + "</" + tag + ">", words
	}
	return "<p>" + content + "</p>", words
}

// RenderTable renders a table; each cell holds its rendered paragraphs.
func RenderTable(t Table) (string, int) {
	var b strings.Builder
	words := 0

	b.WriteString(`<table class="` + TableClass + `">` + "\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>\n")
		for _, cell := range row.Cells {
			b.WriteString("<td>")
			for _, p := range cell.Paragraphs {
				out, n := RenderParagraph(p)
				b.WriteString(out)
				words += n
			}
			b.WriteString("</td>\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")

	return b.String(), words
}

// CountWords counts tokens separated by runs of space, tab, LF or CR.
func CountWords(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}))
}

// headingLevel reports whether the paragraph style is a heading and its
// level. "Heading" with no usable number (empty, non-numeric or outside
// 1..6) falls back to level 2.
func headingLevel(props *ParagraphProps) (int, bool) {
	if props == nil || props.Style == nil {
		return 0, false
	}
	styleID := props.Style.Val
	if !strings.HasPrefix(styleID, headingPrefix) {
		return 0, false
	}
	level, err := strconv.Atoi(strings.TrimPrefix(styleID, headingPrefix))
	if err != nil || level < 1 || level > 6 {
		return defaultHeadingLevel, true
	}
	return level, true
}

func isListItem(props *ParagraphProps) bool {
	return props != nil && props.Numbering != nil
}

// runStyle returns the inline CSS for a run's flags in the fixed order
// bold, italic, underline, or "" when none is set.
func runStyle(props *RunProps) string {
	if props == nil {
		return ""
	}
	decls := make([]string, 0, 3)
	if props.Bold != nil {
		decls = append(decls, "font-weight: bold;")
	}
	if props.Italic != nil {
		decls = append(decls, "font-style: italic;")
	}
	if props.Underline != nil {
		decls = append(decls, "text-decoration: underline;")
	}
	return strings.Join(decls, " ")
}
