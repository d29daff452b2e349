// Package style makes named styles available in a document before content
// refers to them.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

type Outcome int

const (
	// Existing means the definition was already in styles.xml.
	Existing Outcome = iota
	// Defined means the definition was added by this call.
	Defined
)

var ErrInvalidKind = errors.New("invalid style type")

// Kinds accepted by ParseKind, in the order they are listed to callers.
var Kinds = []string{"paragraph", "character", "table"}

func ParseKind(s string) (docx.StyleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paragraph":
		return docx.StyleParagraph, nil
	case "character":
		return docx.StyleCharacter, nil
	case "table":
		return docx.StyleTable, nil
	}
	return 0, fmt.Errorf("%w '%s'. Valid values are: %s", ErrInvalidKind, s, strings.Join(Kinds, ", "))
}

// Ensure makes sure a style of the given name and kind is defined in doc.
// A missing style is brought in by applying it to a throwaway element,
// which is detached again before returning. Names that match no existing
// or built-in style of that kind yield docx.ErrStyleNotFound.
func Ensure(doc *docx.Document, name string, kind docx.StyleType) (Outcome, error) {
	styles, err := doc.Styles()
	if err != nil {
		return Existing, err
	}
	if styles.Find(name, kind) != nil {
		return Existing, nil
	}

	switch kind {
	case docx.StyleParagraph:
		p := doc.AddParagraph("")
		defer p.Remove()
		err = p.SetStyle(name)
	case docx.StyleCharacter:
		p := doc.AddParagraph("")
		defer p.Remove()
		err = p.AddRun("").SetStyle(name)
	case docx.StyleTable:
		tbl := doc.AddTable(1, 1)
		defer tbl.Remove()
		err = tbl.SetStyle(name)
	default:
		return Existing, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	if errors.Is(err, docx.ErrStyleTypeMismatch) {
		return Existing, fmt.Errorf("%w: %v", docx.ErrStyleNotFound, err)
	}
	if err != nil {
		return Existing, err
	}
	return Defined, nil
}

// Apply ensures the paragraph style and sets it, leaving p unstyled when
// the style cannot be found.
func Apply(doc *docx.Document, p *docx.Paragraph, name string) error {
	if _, err := Ensure(doc, name, docx.StyleParagraph); err != nil {
		return err
	}
	return p.SetStyle(name)
}
