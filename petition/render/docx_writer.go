package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"petition-backend/petition/model"
)

const (
	contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"
	packageRelNamespace   = "http://schemas.openxmlformats.org/package/2006/relationships"

	officeDocumentRel = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	corePropsRel      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	stylesRel         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	imageRel          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	defaultMarginTwips = 1440
)

// Render serializes doc as a WordprocessingML package.
func Render(doc model.Document) ([]byte, error) {
	if len(doc.Paragraphs) == 0 {
		return nil, errors.New("document has no paragraphs")
	}
	margin := doc.MarginTwips
	if margin <= 0 {
		margin = defaultMarginTwips
	}

	builder := &bodyBuilder{}
	body := el("w:body")
	for i, p := range doc.Paragraphs {
		node, err := builder.paragraph(p)
		if err != nil {
			return nil, fmt.Errorf("paragraph %d: %w", i, err)
		}
		body.add(node)
	}
	body.add(sectionProperties(margin))

	root := el("w:document").add(body)
	documentXML, err := encodeXMLDocument(root, rootStartTag("w:document", [][2]string{
		{"w", wmlNamespace},
		{"r", relNamespace},
		{"wp", wpNamespace},
		{"a", aNamespace},
		{"pic", picNamespace},
	}))
	if err != nil {
		return nil, err
	}
	if err := validateDocumentXML(documentXML); err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", contentTypesXML(builder.images)},
		{"_rels/.rels", packageRelsXML()},
		{"docProps/core.xml", corePropsXML(doc)},
		{"word/document.xml", documentXML},
		{"word/styles.xml", stylesXML()},
		{"word/_rels/document.xml.rels", documentRelsXML(builder.images)},
	}
	for _, img := range builder.images {
		parts = append(parts, struct {
			name    string
			content []byte
		}{"word/media/" + img.name, img.data})
	}

	for _, part := range parts {
		if err := writeZipFile(writer, part.name, part.content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func contentTypesXML(images []imagePart) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="` + contentTypesNamespace + `">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	seen := map[string]bool{}
	for _, img := range images {
		ext := img.name[strings.LastIndexByte(img.name, '.')+1:]
		if seen[ext] {
			continue
		}
		seen[ext] = true
		b.WriteString(`<Default Extension="` + ext + `" ContentType="image/` + ext + `"/>`)
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func packageRelsXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="` + packageRelNamespace + `">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + officeDocumentRel + `" Target="word/document.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="` + corePropsRel + `" Target="docProps/core.xml"/>`)
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func documentRelsXML(images []imagePart) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="` + packageRelNamespace + `">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="` + stylesRel + `" Target="styles.xml"/>`)
	for _, img := range images {
		b.WriteString(`<Relationship Id="` + img.relID + `" Type="` + imageRel + `" Target="media/` + img.name + `"/>`)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func corePropsXML(doc model.Document) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	writeEscaped(&b, "dc:title", doc.Title)
	writeEscaped(&b, "dc:creator", doc.Author)
	if !doc.Created.IsZero() {
		b.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + doc.Created.UTC().Format(time.RFC3339) + `</dcterms:created>`)
	}
	b.WriteString(`</cp:coreProperties>`)
	return b.Bytes()
}

func writeEscaped(b *bytes.Buffer, tag, value string) {
	if value == "" {
		return
	}
	b.WriteString("<" + tag + ">")
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("</" + tag + ">")
}

// stylesXML sets Calibri 11pt as the document default; every run carries its
// own size so no paragraph styles are needed.
func stylesXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:styles xmlns:w="` + wmlNamespace + `">`)
	b.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr>`)
	b.WriteString(`<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri" w:eastAsia="Calibri"/>`)
	b.WriteString(`<w:sz w:val="22"/><w:szCs w:val="22"/><w:lang w:val="pt-BR"/>`)
	b.WriteString(`</w:rPr></w:rPrDefault><w:pPrDefault/></w:docDefaults>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	b.WriteString(`</w:styles>`)
	return []byte(b.String())
}
