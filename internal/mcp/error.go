package mcp

import (
	"fmt"
	"sort"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
)

// Kind classifies a failed or partial tool outcome.
type Kind int

const (
	NotFound Kind = iota + 1
	InvalidArgument
	Degraded
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}

// NewToolResultKind wraps message in a result for kind. NotFound and
// InvalidArgument are error results; Degraded is a normal result whose
// text starts with "Warning:".
func NewToolResultKind(kind Kind, message string) *mcp.CallToolResult {
	switch kind {
	case Degraded:
		if !strings.HasPrefix(message, "Warning:") {
			message = "Warning: " + message
		}
		return mcp.NewToolResultText(message)
	default:
		return mcp.NewToolResultError(message)
	}
}

func NewToolResultNotFoundError(message string) *mcp.CallToolResult {
	return NewToolResultKind(NotFound, message)
}

func NewToolResultInvalidArgumentError(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Invalid argument: %s", message))
}

func NewToolResultZogIssueMap(errs z.ZogIssueMap) *mcp.CallToolResult {
	issues := z.Issues.SanitizeMap(errs)

	keys := make([]string, 0, len(issues))
	for k := range issues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issueResults []mcp.Content
	for _, k := range keys {
		for _, message := range issues[k] {
			issueResults = append(issueResults, mcp.NewTextContent(fmt.Sprintf("Invalid argument: %s: %s", k, message)))
		}
	}

	return &mcp.CallToolResult{
		Content: issueResults,
		IsError: true,
	}
}
