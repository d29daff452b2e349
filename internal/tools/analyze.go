package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

func AddAnalyzeDocumentStructureTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("analyze_document_structure",
		mcp.WithDescription("Describe a document's paragraphs, runs and tables with their indexes and styles, to find the elements other tools should target"),
		withDocID(),
	), env.handleAnalyzeDocumentStructure)
}

func (e *Env) handleAnalyzeDocumentStructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "analyzing document structure", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(analyzeStructure(id, doc)), nil
	})
}

func analyzeStructure(id string, doc *docx.Document) string {
	paragraphs := doc.Paragraphs()
	tables := doc.Tables()

	var lines []string
	lines = append(lines,
		fmt.Sprintf("Document Structure Analysis for '%s':", docName(id)),
		fmt.Sprintf("Total paragraphs: %d", len(paragraphs)),
		fmt.Sprintf("Total tables: %d", len(tables)),
		"\nParagraph Details:",
	)
	for i, p := range paragraphs {
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			lines = append(lines, fmt.Sprintf("  Paragraph %d: [Empty paragraph]", i))
			continue
		}
		runs := p.Runs()
		lines = append(lines,
			fmt.Sprintf("  Paragraph %d: Style='%s', Runs=%d", i, p.StyleName(), len(runs)),
			fmt.Sprintf("    Text: \"%s\"", truncate(text, 50)),
		)
		if len(runs) > 0 {
			lines = append(lines, "    Run details:")
			for j, r := range runs {
				f := r.Font()
				lines = append(lines, fmt.Sprintf("      Run %d: Style='%s', %s, %s, Text=\"%s\"",
					j, r.StyleName(), flag(f.Bold(), "Bold"), flag(f.Italic(), "Italic"), truncate(r.Text(), 30)))
			}
		}
	}

	if len(tables) > 0 {
		lines = append(lines, "\nTable Details:")
		for i, t := range tables {
			rows := t.Rows()
			lines = append(lines,
				fmt.Sprintf("  Table %d: %d rows x %d columns", i, len(rows), columnSpan(rows)),
				fmt.Sprintf("    Style: %s", t.StyleName()),
			)
			if len(rows) == 0 || len(rows[0].Cells()) == 0 {
				continue
			}
			lines = append(lines, "    Preview:")
			for r, row := range rows[:min(3, len(rows))] {
				cells := row.Cells()
				var texts []string
				for _, c := range cells[:min(3, len(cells))] {
					texts = append(texts, fmt.Sprintf("\"%s\"", truncate(c.Text(), 20)))
				}
				more := ""
				if len(cells) > 3 {
					more = "..."
				}
				lines = append(lines, fmt.Sprintf("      Row %d: %s%s", r, strings.Join(texts, ", "), more))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// columnSpan is the widest row, counting grid columns skipped before and
// after the row's cells.
func columnSpan(rows []*docx.Row) int {
	n := 0
	for _, row := range rows {
		n = max(n, row.GridBefore()+len(row.Cells())+row.GridAfter())
	}
	return n
}

// truncate cuts s to n runes and marks the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func flag(v *bool, name string) string {
	if v != nil && *v {
		return name
	}
	return "Normal"
}
