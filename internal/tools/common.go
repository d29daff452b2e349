package tools

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

// unchanged ends an update without saving; res is reported as is.
type unchanged struct {
	res *mcp.CallToolResult
}

func (u unchanged) Error() string { return "document unchanged" }

func convertStyleMapToYAMLFlow(styleMap map[string]any) string {
	if len(styleMap) == 0 {
		return ""
	}
	yamlBytes, err := yaml.MarshalWithOptions(styleMap, yaml.Flow(true), yaml.OmitEmpty())
	if err != nil {
		return ""
	}
	yamlStr := strings.TrimSpace(strings.ReplaceAll(string(yamlBytes), "\"", ""))
	return yamlStr
}

// fontMap lists the direct character formatting of f.
func fontMap(f *docx.Font) map[string]any {
	m := map[string]any{}
	if name := f.Name(); name != "" {
		m["name"] = name
	}
	if size, ok := f.Size(); ok {
		m["size"] = size.Pt()
	}
	for key, v := range map[string]*bool{"bold": f.Bold(), "italic": f.Italic(), "underline": f.Underline()} {
		if v != nil {
			m[key] = *v
		}
	}
	if c, ok := f.Color(); ok {
		m["color"] = "#" + c.String()
	}
	return m
}

var alignmentNames = map[docx.Alignment]string{
	docx.AlignLeft:    "LEFT",
	docx.AlignCenter:  "CENTER",
	docx.AlignRight:   "RIGHT",
	docx.AlignJustify: "JUSTIFY",
}

// paragraphMap lists the direct paragraph formatting of f, lengths in
// inches and spacing in points.
func paragraphMap(f *docx.ParagraphFormat) map[string]any {
	m := map[string]any{}
	if a, ok := f.Alignment(); ok {
		if name, ok := alignmentNames[a]; ok {
			m["alignment"] = name
		} else {
			m["alignment"] = string(a)
		}
	}
	inches := map[string]func() (docx.Length, bool){
		"left_indent":       f.LeftIndent,
		"right_indent":      f.RightIndent,
		"first_line_indent": f.FirstLineIndent,
	}
	for key, get := range inches {
		if l, ok := get(); ok {
			m[key] = round2(l.Inches())
		}
	}
	if l, ok := f.SpaceBefore(); ok {
		m["space_before"] = round2(l.Pt())
	}
	if l, ok := f.SpaceAfter(); ok {
		m["space_after"] = round2(l.Pt())
	}
	if ls, ok := f.LineSpacing(); ok {
		if ls.IsExact() {
			m["line_spacing"] = formatPt(ls.Exact.Pt())
		} else {
			m["line_spacing"] = round2(ls.Multiple)
		}
	}
	flags := map[string]*bool{
		"keep_together":     f.KeepTogether(),
		"keep_with_next":    f.KeepWithNext(),
		"page_break_before": f.PageBreakBefore(),
		"widow_control":     f.WidowControl(),
	}
	for key, v := range flags {
		if v != nil {
			m[key] = *v
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatPt(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64) + "pt"
}
