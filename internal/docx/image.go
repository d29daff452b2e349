package docx

import (
	"bytes"
	"fmt"
	"html"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strconv"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image formats Word renders natively, keyed by MIME type.
var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

const imageDPI = 72

// ImageInfo describes a picture placed in a document.
type ImageInfo struct {
	Part        string
	ContentType string
	PixelWidth  int
	PixelHeight int
	Width       Length
	Height      Length
}

// normalizeImage detects the image type and re-encodes formats Word does
// not render (WebP) as PNG.
func normalizeImage(data []byte) ([]byte, string, image.Config, error) {
	mt := mimetype.Detect(data)
	ct := mt.String()
	if mt.Is("image/webp") {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", image.Config{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", image.Config{}, err
		}
		data, ct = buf.Bytes(), "image/png"
	}
	if _, ok := imageExtensions[ct]; !ok {
		return nil, "", image.Config{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", image.Config{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, "", image.Config{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	return data, ct, cfg, nil
}

// AddPicture appends a paragraph holding the image inline, scaled to width
// with its aspect ratio kept. A zero width keeps the native size.
func (c *BlockContainer) AddPicture(data []byte, name string, width Length) (*Paragraph, ImageInfo, error) {
	p := c.AddParagraph("")
	info, err := p.AddPicture(data, name, width)
	if err != nil {
		p.Remove()
		return nil, ImageInfo{}, err
	}
	return p, info, nil
}

// AddPicture appends a run holding the image inline to p. The image part
// is related to the part p lives in, so this works in headers and footers.
func (p *Paragraph) AddPicture(data []byte, name string, width Length) (ImageInfo, error) {
	data, ct, cfg, err := normalizeImage(data)
	if err != nil {
		return ImageInfo{}, err
	}
	info := ImageInfo{
		ContentType: ct,
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
		Width:       Length(cfg.Width * emuPerInch / imageDPI),
		Height:      Length(cfg.Height * emuPerInch / imageDPI),
	}
	if width > 0 {
		info.Height = Length(math.Round(float64(width) * float64(cfg.Height) / float64(cfg.Width)))
		info.Width = width
	}

	d := p.doc
	ext := imageExtensions[ct]
	info.Part = "word/media/image-" + uuid.NewString() + "." + ext
	d.pkg.SetPart(info.Part, data)
	types, err := d.pkg.ContentTypes()
	if err != nil {
		return ImageInfo{}, err
	}
	types.AddDefault(ext, ct)
	rels, err := d.pkg.Relationships(p.part)
	if err != nil {
		return ImageInfo{}, err
	}
	rID := rels.Add(relTypeImage, relativeTarget(p.part, info.Part))

	x, err := d.pkg.XML(p.part)
	if err != nil {
		return ImageInfo{}, err
	}
	root := x.Root()
	for prefix, uri := range map[string]string{"r": nsR, "wp": nsWP, "a": nsA, "pic": nsPic} {
		ensureNamespace(root, prefix, uri)
	}
	drawing, err := inlineDrawing(nextDocPrID(root), name, rID, info.Width, info.Height)
	if err != nil {
		return ImageInfo{}, err
	}
	p.AddRun("").el.AddChild(drawing)
	return info, nil
}

func (d *Document) AddPicture(data []byte, name string, width Length) (*Paragraph, ImageInfo, error) {
	return d.Body().AddPicture(data, name, width)
}

func nextDocPrID(root *etree.Element) int {
	maxID := 0
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if el.FullTag() == "wp:docPr" {
			if n, err := strconv.Atoi(el.SelectAttrValue("id", "")); err == nil && n > maxID {
				maxID = n
			}
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return maxID + 1
}

const inlineTemplate = `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">` +
	`<wp:extent cx="%[4]d" cy="%[5]d"/><wp:docPr id="%[1]d" name="Picture %[1]d"/>` +
	`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
	`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:pic><pic:nvPicPr><pic:cNvPr id="0" name="%[2]s"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip r:embed="%[3]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[4]d" cy="%[5]d"/></a:xfrm>` +
	`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>` +
	`</a:graphicData></a:graphic></wp:inline></w:drawing>`

func inlineDrawing(id int, name, rID string, cx, cy Length) (*etree.Element, error) {
	snippet := fmt.Sprintf(inlineTemplate, id, html.EscapeString(name), rID, int64(cx), int64(cy))
	doc := etree.NewDocument()
	wrapper := fmt.Sprintf(`<root xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s">%s</root>`,
		nsW, nsR, nsWP, nsA, nsPic, snippet)
	if err := doc.ReadFromString(wrapper); err != nil {
		return nil, err
	}
	el := doc.Root().SelectElement("w:drawing")
	doc.Root().RemoveChild(el)
	return el, nil
}
