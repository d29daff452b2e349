package docx

import (
	"fmt"
	"strings"
)

// Word stores a few built-in style names in lowercase while showing them
// capitalized in its UI.
var (
	uiNames       = map[string]string{}
	internalNames = map[string]string{}
)

func init() {
	aliases := []string{"Caption", "Footer", "Header"}
	for i := 1; i <= 9; i++ {
		aliases = append(aliases, fmt.Sprintf("Heading %d", i))
	}
	for _, ui := range aliases {
		internal := strings.ToLower(ui)
		internalNames[ui] = internal
		uiNames[internal] = ui
	}
}

func uiToInternal(name string) string {
	if n, ok := internalNames[name]; ok {
		return n
	}
	return name
}

func internalToUI(name string) string {
	if n, ok := uiNames[name]; ok {
		return n
	}
	return name
}
