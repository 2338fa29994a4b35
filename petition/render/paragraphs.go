package render

import (
	"fmt"

	"petition-backend/petition/model"
)

// emuPerPixel converts 96-dpi pixels to English Metric Units.
const emuPerPixel = 9525

type imagePart struct {
	relID string
	name  string
	data  []byte
}

type bodyBuilder struct {
	images []imagePart
}

func (b *bodyBuilder) paragraph(p model.Paragraph) (*xmlNode, error) {
	para := el("w:p")
	para.add(paragraphProperties(p))

	if p.Image != nil {
		run, err := b.imageRun(*p.Image)
		if err != nil {
			return nil, err
		}
		para.add(run)
	}
	for _, r := range p.Runs {
		para.add(textRun(r))
	}
	return para, nil
}

func paragraphProperties(p model.Paragraph) *xmlNode {
	pPr := el("w:pPr")
	if p.TopBorder {
		pPr.add(el("w:pBdr").add(el("w:top", "w:val", "single", "w:sz", "6", "w:space", "1", "w:color", "000000")))
	}
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		var attrs []string
		if p.SpacingBefore > 0 {
			attrs = append(attrs, "w:before", itoa(p.SpacingBefore))
		}
		if p.SpacingAfter > 0 {
			attrs = append(attrs, "w:after", itoa(p.SpacingAfter))
		}
		pPr.add(el("w:spacing", attrs...))
	}
	if p.FirstLineIndent > 0 {
		pPr.add(el("w:ind", "w:firstLine", itoa(p.FirstLineIndent)))
	}
	if p.Align != "" && p.Align != model.AlignLeft {
		pPr.add(el("w:jc", "w:val", string(p.Align)))
	}
	if len(pPr.Children) == 0 {
		return nil
	}
	return pPr
}

func textRun(r model.Run) *xmlNode {
	run := el("w:r")
	rPr := el("w:rPr")
	if r.Bold {
		rPr.add(el("w:b"))
	}
	if r.Size > 0 {
		rPr.add(el("w:sz", "w:val", itoa(r.Size)), el("w:szCs", "w:val", itoa(r.Size)))
	}
	if len(rPr.Children) > 0 {
		run.add(rPr)
	}
	return run.add(el("w:t", "xml:space", "preserve").add(textNode(r.Text)))
}

func (b *bodyBuilder) imageRun(img model.Image) (*xmlNode, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("image has no data")
	}
	if img.WidthPx <= 0 || img.HeightPx <= 0 {
		return nil, fmt.Errorf("image has invalid size %dx%d", img.WidthPx, img.HeightPx)
	}
	ext, err := imageExtension(img.Format)
	if err != nil {
		return nil, err
	}

	n := len(b.images) + 1
	part := imagePart{
		relID: fmt.Sprintf("rIdImage%d", n),
		name:  fmt.Sprintf("image%d.%s", n, ext),
		data:  img.Data,
	}
	b.images = append(b.images, part)

	cx := itoa(img.WidthPx * emuPerPixel)
	cy := itoa(img.HeightPx * emuPerPixel)
	id := itoa(n)

	pic := el("pic:pic").add(
		el("pic:nvPicPr").add(el("pic:cNvPr", "id", id, "name", part.name), el("pic:cNvPicPr")),
		el("pic:blipFill").add(
			el("a:blip", "r:embed", part.relID),
			el("a:stretch").add(el("a:fillRect")),
		),
		el("pic:spPr").add(
			el("a:xfrm").add(el("a:off", "x", "0", "y", "0"), el("a:ext", "cx", cx, "cy", cy)),
			el("a:prstGeom", "prst", "rect").add(el("a:avLst")),
		),
	)
	inline := el("wp:inline", "distT", "0", "distB", "0", "distL", "0", "distR", "0").add(
		el("wp:extent", "cx", cx, "cy", cy),
		el("wp:docPr", "id", id, "name", fmt.Sprintf("Picture %d", n)),
		el("wp:cNvGraphicFramePr").add(el("a:graphicFrameLocks", "noChangeAspect", "1")),
		el("a:graphic").add(el("a:graphicData", "uri", picNamespace).add(pic)),
	)
	return el("w:r").add(el("w:drawing").add(inline)), nil
}

func imageExtension(format model.ImageFormat) (string, error) {
	switch format {
	case model.ImagePNG:
		return "png", nil
	case model.ImageJPEG:
		return "jpeg", nil
	default:
		return "", fmt.Errorf("unsupported image format %q", format)
	}
}

func sectionProperties(margin int) *xmlNode {
	m := itoa(margin)
	return el("w:sectPr").add(
		el("w:pgSz", "w:w", "11906", "w:h", "16838"),
		el("w:pgMar", "w:top", m, "w:right", m, "w:bottom", m, "w:left", m, "w:header", "708", "w:footer", "708", "w:gutter", "0"),
	)
}
