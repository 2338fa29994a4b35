package model

import (
	"fmt"
	"strings"
	"time"
)

// DocType identifies one of the fixed petition templates.
type DocType string

const (
	DocTypeAdministrativeAppeal DocType = "recurso_administrativo"
	DocTypeCounterArguments     DocType = "contrarrazoes"
	DocTypeBrandSubstitution    DocType = "substituicao_marca"
	DocTypeDeadlineExtension    DocType = "prorrogacao_prazo"
	DocTypeNotificationDefense  DocType = "defesa_notificacao"
)

var docTypeLabels = map[DocType]string{
	DocTypeAdministrativeAppeal: "Recurso Administrativo",
	DocTypeCounterArguments:     "Contrarrazões de Recurso",
	DocTypeBrandSubstitution:    "Solicitação de Substituição de Marca",
	DocTypeDeadlineExtension:    "Solicitação de Prorrogação de Prazo",
	DocTypeNotificationDefense:  "Defesa contra Notificação",
}

// DocTypes lists every supported type in display order.
func DocTypes() []DocType {
	return []DocType{
		DocTypeAdministrativeAppeal,
		DocTypeCounterArguments,
		DocTypeBrandSubstitution,
		DocTypeDeadlineExtension,
		DocTypeNotificationDefense,
	}
}

// ParseDocType validates a wire value.
func ParseDocType(raw string) (DocType, error) {
	t := DocType(strings.TrimSpace(raw))
	if _, ok := docTypeLabels[t]; !ok {
		return "", fmt.Errorf("unknown docType %q", raw)
	}
	return t, nil
}

// Label returns the human readable name shown in listings.
func (t DocType) Label() string {
	return docTypeLabels[t]
}

// Company is the letterhead data of the filing company.
type Company struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// Case is the procurement proceeding the petition refers to.
type Case struct {
	ProcessNumber string
	Agency        string
}

// Logo is optional letterhead artwork.
type Logo struct {
	Data     []byte
	MIMEType string
}

// Alignment is a paragraph justification.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignJustify Alignment = "both"
)

// ImageFormat is the container format of an embedded image.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// Image is an inline picture sized in pixels.
type Image struct {
	Data     []byte
	Format   ImageFormat
	WidthPx  int
	HeightPx int
}

// Run is a span of uniformly formatted text. Size is in half-points.
type Run struct {
	Text string
	Bold bool
	Size int
}

// Paragraph is a block of runs or a single image. Spacing and indent are in twips.
type Paragraph struct {
	Runs            []Run
	Image           *Image
	Align           Alignment
	SpacingBefore   int
	SpacingAfter    int
	FirstLineIndent int
	TopBorder       bool
}

// Text concatenates the paragraph's runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Document is the renderer-independent petition layout.
type Document struct {
	Title       string
	Author      string
	Created     time.Time
	MarginTwips int
	Paragraphs  []Paragraph
}
