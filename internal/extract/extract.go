package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"petition-backend/internal/shared/apperror"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for formats text cannot be pulled from.
var ErrUnsupported = apperror.Validation("Extração de texto disponível apenas para PDF e DOCX")

// TextFromBytes extracts plain text from a PDF or DOCX payload. The declared
// content type is replaced by the sniffed one when it is missing or generic.
func TextFromBytes(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeContentType(contentType, data) {
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	default:
		return "", ErrUnsupported
	}
}

func normalizeContentType(contentType string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch clean {
	case "", "application/octet-stream", "application/zip":
		return strings.Split(mimetype.Detect(data).String(), ";")[0]
	}
	return clean
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperror.Wrap(fmt.Errorf("open pdf: %w", err), apperror.KindValidation, "", "extract.pdf")
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", apperror.Wrap(fmt.Errorf("read pdf text: %w", err), apperror.KindValidation, "", "extract.pdf")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperror.Validation("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperror.Wrap(fmt.Errorf("open docx: %w", err), apperror.KindValidation, "", "extract.docx")
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", apperror.Validation("document.xml not found in docx")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return paragraphText(rc)
}

// paragraphText joins w:t content, one line per paragraph or break.
func paragraphText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperror.Wrap(fmt.Errorf("parse document.xml: %w", err), apperror.KindValidation, "", "extract.docx")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p", "br":
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
