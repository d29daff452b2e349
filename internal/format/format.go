package format

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

var ErrInvalidOption = errors.New("invalid formatting option")

// OptionError reports a formatting value that could not be converted.
type OptionError struct {
	Key    string
	Value  any
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid value for '%s': %v (%s)", e.Key, e.Value, e.Reason)
}

func (e *OptionError) Unwrap() error { return ErrInvalidOption }

// Upper bounds Word accepts for the corresponding properties.
const (
	maxIndentInches  = 22
	maxSpacingPt     = 1584
	maxFontSizePt    = 1638
	maxLineMultiple  = 132
	maxLineSpacingPt = 1584
)

var alignments = map[string]docx.Alignment{
	"LEFT":    docx.AlignLeft,
	"CENTER":  docx.AlignCenter,
	"RIGHT":   docx.AlignRight,
	"JUSTIFY": docx.AlignJustify,
}

// LineSpacing holds either a multiple of single spacing or an exact height.
type LineSpacing struct {
	Multiple float64
	Exact    docx.Length
}

// ParagraphOptions is the paragraph half of a formatting map. Nil fields
// leave the corresponding property untouched.
type ParagraphOptions struct {
	Alignment       *docx.Alignment
	LeftIndent      *docx.Length
	RightIndent     *docx.Length
	FirstLineIndent *docx.Length
	SpaceBefore     *docx.Length
	SpaceAfter      *docx.Length
	LineSpacing     *LineSpacing
	KeepTogether    *bool
	KeepWithNext    *bool
	PageBreakBefore *bool
	WidowControl    *bool
}

// RunOptions is the character half of a formatting map.
type RunOptions struct {
	Name      *string
	Size      *docx.Length
	Bold      *bool
	Italic    *bool
	Underline *bool
	Color     *docx.RGBColor
}

// ParseParagraph converts the paragraph keys of m. Unknown keys are ignored
// and unrecognised alignment values are dropped.
func ParseParagraph(m map[string]any) (ParagraphOptions, error) {
	var o ParagraphOptions
	if v, ok := present(m, "alignment"); ok {
		if s, ok := v.(string); ok {
			if a, ok := alignments[strings.ToUpper(strings.TrimSpace(s))]; ok {
				o.Alignment = &a
			}
		}
	}

	// indents may be negative (hanging); spacing may not
	lengths := []struct {
		key      string
		unit     func(float64) docx.Length
		min, max float64
		dst      **docx.Length
	}{
		{"left_indent", docx.Inches, -maxIndentInches, maxIndentInches, &o.LeftIndent},
		{"right_indent", docx.Inches, -maxIndentInches, maxIndentInches, &o.RightIndent},
		{"first_line_indent", docx.Inches, -maxIndentInches, maxIndentInches, &o.FirstLineIndent},
		{"space_before", docx.Pt, 0, maxSpacingPt, &o.SpaceBefore},
		{"space_after", docx.Pt, 0, maxSpacingPt, &o.SpaceAfter},
	}
	for _, l := range lengths {
		v, ok := present(m, l.key)
		if !ok {
			continue
		}
		f, err := number(l.key, v)
		if err != nil {
			return o, err
		}
		if f < l.min || f > l.max {
			return o, &OptionError{Key: l.key, Value: v, Reason: fmt.Sprintf("must be between %g and %g", l.min, l.max)}
		}
		length := l.unit(f)
		*l.dst = &length
	}

	if v, ok := present(m, "line_spacing"); ok {
		ls, err := parseLineSpacing(v)
		if err != nil {
			return o, err
		}
		o.LineSpacing = &ls
	}

	flags := []struct {
		key string
		dst **bool
	}{
		{"keep_together", &o.KeepTogether},
		{"keep_with_next", &o.KeepWithNext},
		{"page_break_before", &o.PageBreakBefore},
		{"widow_control", &o.WidowControl},
	}
	for _, f := range flags {
		v, ok := present(m, f.key)
		if !ok {
			continue
		}
		b, err := boolean(f.key, v)
		if err != nil {
			return o, err
		}
		*f.dst = &b
	}
	return o, nil
}

// ParseRun converts the character keys of m.
func ParseRun(m map[string]any) (RunOptions, error) {
	var o RunOptions
	if v, ok := present(m, "name"); ok {
		if name := cast.ToString(v); name != "" {
			o.Name = &name
		}
	}
	if v, ok := present(m, "size"); ok {
		f, err := number("size", v)
		if err != nil {
			return o, err
		}
		if f <= 0 || f > maxFontSizePt {
			return o, &OptionError{Key: "size", Value: v, Reason: fmt.Sprintf("must be greater than 0 and at most %d", maxFontSizePt)}
		}
		size := docx.Pt(f)
		o.Size = &size
	}
	flags := []struct {
		key string
		dst **bool
	}{
		{"bold", &o.Bold},
		{"italic", &o.Italic},
		{"underline", &o.Underline},
	}
	for _, f := range flags {
		v, ok := present(m, f.key)
		if !ok {
			continue
		}
		b, err := boolean(f.key, v)
		if err != nil {
			return o, err
		}
		*f.dst = &b
	}
	if v, ok := present(m, "color"); ok {
		s, isString := v.(string)
		if !isString {
			return o, &OptionError{Key: "color", Value: v, Reason: "expected #RRGGBB or rgb(r,g,b)"}
		}
		if s != "" {
			c, err := ParseColor(s)
			if err != nil {
				return o, &OptionError{Key: "color", Value: v, Reason: err.Error()}
			}
			o.Color = &c
		}
	}
	return o, nil
}

func (o ParagraphOptions) Apply(f *docx.ParagraphFormat) {
	if o.Alignment != nil {
		f.SetAlignment(*o.Alignment)
	}
	if o.LeftIndent != nil {
		f.SetLeftIndent(*o.LeftIndent)
	}
	if o.RightIndent != nil {
		f.SetRightIndent(*o.RightIndent)
	}
	if o.FirstLineIndent != nil {
		f.SetFirstLineIndent(*o.FirstLineIndent)
	}
	if o.SpaceBefore != nil {
		f.SetSpaceBefore(*o.SpaceBefore)
	}
	if o.SpaceAfter != nil {
		f.SetSpaceAfter(*o.SpaceAfter)
	}
	if ls := o.LineSpacing; ls != nil {
		if ls.Multiple > 0 {
			f.SetLineSpacingMultiple(ls.Multiple)
		} else {
			f.SetLineSpacingExact(ls.Exact)
		}
	}
	if o.KeepTogether != nil {
		f.SetKeepTogether(*o.KeepTogether)
	}
	if o.KeepWithNext != nil {
		f.SetKeepWithNext(*o.KeepWithNext)
	}
	if o.PageBreakBefore != nil {
		f.SetPageBreakBefore(*o.PageBreakBefore)
	}
	if o.WidowControl != nil {
		f.SetWidowControl(*o.WidowControl)
	}
}

func (o RunOptions) Apply(f *docx.Font) {
	if o.Name != nil {
		f.SetName(*o.Name)
	}
	if o.Size != nil {
		f.SetSize(*o.Size)
	}
	if o.Bold != nil {
		f.SetBold(*o.Bold)
	}
	if o.Italic != nil {
		f.SetItalic(*o.Italic)
	}
	if o.Underline != nil {
		f.SetUnderline(*o.Underline)
	}
	if o.Color != nil {
		f.SetColor(*o.Color)
	}
}

// ApplyParagraph parses m and applies it to f in one step.
func ApplyParagraph(f *docx.ParagraphFormat, m map[string]any) error {
	o, err := ParseParagraph(m)
	if err != nil {
		return err
	}
	o.Apply(f)
	return nil
}

func ApplyRun(f *docx.Font, m map[string]any) error {
	o, err := ParseRun(m)
	if err != nil {
		return err
	}
	o.Apply(f)
	return nil
}

var rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)

// ParseColor accepts "#RRGGBB" and "rgb(r,g,b)".
func ParseColor(s string) (docx.RGBColor, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return docx.ParseHexColor(s)
	}
	m := rgbPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return docx.RGBColor{}, fmt.Errorf("expected #RRGGBB or rgb(r,g,b), got %q", s)
	}
	var c docx.RGBColor
	for i := range c {
		n, _ := strconv.Atoi(m[i+1])
		if n > 255 {
			return docx.RGBColor{}, fmt.Errorf("color component %d out of range 0-255", n)
		}
		c[i] = uint8(n)
	}
	return c, nil
}

func parseLineSpacing(v any) (LineSpacing, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if !Finite(f) {
				return LineSpacing{}, &OptionError{Key: "line_spacing", Value: v, Reason: "must be a finite number"}
			}
			return multiple(v, f)
		}
		if strings.HasSuffix(strings.ToLower(s), "pt") {
			f, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-2]), 64)
			if err == nil && f > 0 && f <= maxLineSpacingPt {
				return LineSpacing{Exact: docx.Pt(f)}, nil
			}
		}
		return LineSpacing{}, &OptionError{Key: "line_spacing", Value: v, Reason: "expected a multiple such as 1.5 or a height such as \"12pt\""}
	}
	f, err := number("line_spacing", v)
	if err != nil {
		return LineSpacing{}, err
	}
	return multiple(v, f)
}

func multiple(v any, f float64) (LineSpacing, error) {
	if !(f > 0 && f <= maxLineMultiple) {
		return LineSpacing{}, &OptionError{Key: "line_spacing", Value: v, Reason: fmt.Sprintf("must be greater than 0 and at most %d", maxLineMultiple)}
	}
	return LineSpacing{Multiple: f}, nil
}

// present reports whether key is set to a non-null value.
func present(m map[string]any, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func number(key string, v any) (float64, error) {
	if _, ok := v.(bool); ok {
		return 0, &OptionError{Key: key, Value: v, Reason: "expected a number"}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &OptionError{Key: key, Value: v, Reason: "expected a number"}
	}
	if !Finite(f) {
		return 0, &OptionError{Key: key, Value: v, Reason: "must be a finite number"}
	}
	return f, nil
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func boolean(key string, v any) (bool, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, &OptionError{Key: key, Value: v, Reason: "expected a boolean"}
	}
	return b, nil
}
