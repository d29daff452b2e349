package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
)

type AddImageArguments struct {
	DocID           string `zog:"doc_id"`
	Base64ImageData string `zog:"base64_image_data"`
	ImageData       string `zog:"image_data"`
	ImageName       string `zog:"image_name"`
}

var addImageArgumentsSchema = z.Struct(z.Shape{
	"docID":           z.String().Test(DocIDTest()).Required(),
	"base64ImageData": z.String().Trim(),
	"imageData":       z.String().Trim(),
	"imageName":       z.String().Default("image"),
})

func AddImageTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_image",
		mcp.WithDescription("Append an image to a document as its own paragraph. PNG, JPEG, GIF, BMP and TIFF are embedded as is; WebP is converted to PNG."),
		withDocID(),
		mcp.WithString("base64_image_data",
			mcp.Required(),
			mcp.Description("Base64 encoded image bytes. A data: URL prefix is accepted."),
		),
		mcp.WithString("image_name",
			mcp.Required(),
			mcp.Description("Image name, used as the picture's description"),
		),
		mcp.WithNumber("width_inches",
			mcp.Description("Display width in inches; height keeps the aspect ratio"),
			mcp.DefaultNumber(6.0),
		),
	), env.handleAddImage)
}

func (e *Env) handleAddImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddImageArguments{}
	issues := addImageArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	data, res := imagePayload(args.Base64ImageData, args.ImageData)
	if res != nil {
		return res, nil
	}
	width := request.GetFloat("width_inches", 6.0)
	if width <= 0 || !inchesInRange(width) {
		return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("width_inches must be greater than 0 and at most %d", maxInches)), nil
	}

	id := normalizeID(args.DocID)
	return e.update(id, "adding image", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		_, info, err := doc.AddPicture(data, args.ImageName, docx.Inches(width))
		if errors.Is(err, docx.ErrUnsupportedImage) {
			return mcp.NewToolResultError(fmt.Sprintf("Error adding image: %v", err)), nil
		}
		if err != nil {
			return nil, err
		}
		e.log().WithFields(logrus.Fields{
			"doc_id": id,
			"part":   info.Part,
			"type":   info.ContentType,
			"pixels": fmt.Sprintf("%dx%d", info.PixelWidth, info.PixelHeight),
		}).Debug("image embedded")
		return mcp.NewToolResultText(fmt.Sprintf("Image '%s' added to document '%s' successfully.", args.ImageName, docName(id))), nil
	})
}

// imagePayload decodes base64_image_data, falling back to its image_data
// alias.
func imagePayload(encoded, alias string) ([]byte, *mcp.CallToolResult) {
	if encoded == "" {
		encoded = alias
	}
	if encoded == "" {
		return nil, imcp.NewToolResultInvalidArgumentError("base64_image_data is required")
	}
	data, err := decodeImageData(encoded)
	if err != nil {
		return nil, imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("base64_image_data: %v", err))
	}
	return data, nil
}

// decodeImageData accepts standard or URL-safe base64, with or without
// padding or a data: URL prefix.
func decodeImageData(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
