package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/goccy/go-yaml"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
)

type documentMetadata struct {
	Title          string `yaml:"title"`
	Author         string `yaml:"author"`
	Subject        string `yaml:"subject"`
	Keywords       string `yaml:"keywords"`
	Category       string `yaml:"category"`
	Comments       string `yaml:"comments"`
	LastModifiedBy string `yaml:"last_modified_by"`
	Revision       int    `yaml:"revision,omitempty"`
	Created        string `yaml:"created,omitempty"`
	Modified       string `yaml:"modified,omitempty"`
}

func AddGetDocumentMetadataTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("get_document_metadata",
		mcp.WithDescription("Read a document's core properties (title, author, subject, keywords, category, comments, timestamps)"),
		withDocID(),
	), env.handleGetDocumentMetadata)
}

func (e *Env) handleGetDocumentMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "getting metadata", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		props, err := doc.CoreProperties()
		if err != nil {
			return nil, err
		}
		md := documentMetadata{
			Title:          props.Title(),
			Author:         props.Author(),
			Subject:        props.Subject(),
			Keywords:       props.Keywords(),
			Category:       props.Category(),
			Comments:       props.Comments(),
			LastModifiedBy: props.LastModifiedBy(),
			Revision:       props.Revision(),
		}
		if t, ok := props.Created(); ok {
			md.Created = t.Format(time.RFC3339)
		}
		if t, ok := props.Modified(); ok {
			md.Modified = t.Format(time.RFC3339)
		}
		out, err := yaml.Marshal(md)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Metadata for '%s':\n%s", docName(id), strings.TrimSpace(string(out)))), nil
	})
}

type SetDocumentMetadataArguments struct {
	DocID string `zog:"doc_id"`
}

var setDocumentMetadataArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
})

// metadataSetters maps metadata keys to core property setters.
var metadataSetters = map[string]func(*docx.CoreProperties, string){
	"author":   (*docx.CoreProperties).SetAuthor,
	"title":    (*docx.CoreProperties).SetTitle,
	"subject":  (*docx.CoreProperties).SetSubject,
	"keywords": (*docx.CoreProperties).SetKeywords,
	"category": (*docx.CoreProperties).SetCategory,
	"comments": (*docx.CoreProperties).SetComments,
}

func AddSetDocumentMetadataTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_document_metadata",
		mcp.WithDescription("Set a document's core properties. Only the given keys change."),
		withDocID(),
		imcp.WithObject("metadata",
			mcp.Required(),
			mcp.Description("Any of author, title, subject, keywords, category, comments"),
		),
	), env.handleSetDocumentMetadata)
}

func (e *Env) handleSetDocumentMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetDocumentMetadataArguments{}
	issues := setDocumentMetadataArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	metadata, res := objectArg(request, "metadata")
	if res != nil {
		return res, nil
	}
	id := normalizeID(args.DocID)
	return e.update(id, "setting metadata", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		props, err := doc.CoreProperties()
		if err != nil {
			return nil, err
		}
		var changed []string
		for key, set := range metadataSetters {
			v, ok := metadata[key]
			if !ok || v == nil {
				continue
			}
			s, err := cast.ToStringE(v)
			if err != nil {
				return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("metadata.%s must be a string", key)), nil
			}
			set(props, s)
			changed = append(changed, key)
		}
		if len(changed) == 0 {
			return imcp.NewToolResultInvalidArgumentError("metadata: no known keys (author, title, subject, keywords, category, comments)"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Metadata updated for %s", docName(id))), nil
	})
}
