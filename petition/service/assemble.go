package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/metrics"
	"petition-backend/petition/model"
	"petition-backend/petition/render"
	"petition-backend/petition/template"
)

// Input is everything needed to assemble one petition.
type Input struct {
	DocType    model.DocType
	Company    model.Company
	Case       model.Case
	Parameters string
	Logo       *model.Logo
	// Date printed in the closing block; zero means now.
	Date time.Time
}

// Result carries the DOCX bytes plus non-fatal problems met on the way.
type Result struct {
	Bytes    []byte
	Warnings []string
}

// Assemble builds the petition layout for in and serializes it as DOCX.
func Assemble(in Input) (Result, error) {
	start := time.Now()
	defer func() { metrics.AssemblyDuration.Observe(time.Since(start).Seconds()) }()

	tpl, err := template.Lookup(in.DocType)
	if err != nil {
		return Result{}, apperror.Wrap(err, apperror.KindValidation, "", "petition.assemble")
	}
	if err := tpl.Validate(); err != nil {
		return Result{}, &apperror.Error{Kind: apperror.KindAssembly, Op: "petition.assemble", Message: "malformed template", Err: err}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var warnings []string
	doc := model.Document{
		Title:       tpl.Title,
		Author:      in.Company.Name,
		Created:     date,
		MarginTwips: PageMarginTwips,
	}

	if in.Logo != nil && len(in.Logo.Data) > 0 {
		img, err := fitLogo(*in.Logo)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("logo omitted: %v", err))
		} else {
			doc.Paragraphs = append(doc.Paragraphs, model.Paragraph{Image: img, Align: model.AlignCenter})
		}
	}

	doc.Paragraphs = append(doc.Paragraphs, letterhead(in.Company)...)
	doc.Paragraphs = append(doc.Paragraphs, titleBlock(tpl.Title, in.Case)...)
	for _, s := range tpl.Sections {
		doc.Paragraphs = append(doc.Paragraphs, heading(s.Heading))
		for _, line := range s.Lines {
			doc.Paragraphs = append(doc.Paragraphs, bodyParagraph(lineText(line, in)))
		}
	}
	doc.Paragraphs = append(doc.Paragraphs, closing(in.Company, date)...)

	out, err := render.Render(doc)
	if err != nil {
		return Result{}, &apperror.Error{Kind: apperror.KindAssembly, Op: "petition.render", Message: "serialize document", Err: err}
	}
	return Result{Bytes: out, Warnings: warnings}, nil
}

// OpeningSentence is the boilerplate that introduces the filing company.
func OpeningSentence(c model.Company, cs model.Case) string {
	address := strings.TrimSpace(c.Address)
	if address == "" {
		address = "conforme cadastro"
	}
	return fmt.Sprintf("%s, inscrita no CNPJ sob o nº %s, com endereço %s, vem, respeitosamente, "+
		"à presença de Vossa Senhoria, apresentar o presente documento referente ao Processo nº %s.",
		c.Name, c.TaxID, address, cs.ProcessNumber)
}

// LongDate formats t as "15 de outubro de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), ptMonths[t.Month()-1], t.Year())
}

func lineText(line template.Line, in Input) string {
	switch line.Role {
	case template.RoleIntro:
		return OpeningSentence(in.Company, in.Case)
	case template.RoleSlot:
		if p := strings.TrimSpace(in.Parameters); p != "" {
			return p
		}
		return line.Text
	default:
		return line.Text
	}
}

func letterhead(c model.Company) []model.Paragraph {
	// A Caser is not safe for concurrent use.
	upper := cases.Upper(language.BrazilianPortuguese)
	paras := []model.Paragraph{
		centered(model.Run{Text: upper.String(c.Name), Bold: true, Size: CompanyNameSize}, 200),
		centered(model.Run{Text: "CNPJ: " + c.TaxID, Size: ContactSize}, 200),
	}
	if addr := strings.TrimSpace(c.Address); addr != "" {
		paras = append(paras, centered(model.Run{Text: addr, Size: ContactSize}, 200))
	}
	var contact []string
	for _, v := range []string{c.Email, c.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		paras = append(paras, centered(model.Run{Text: strings.Join(contact, " | "), Size: ContactSize}, 400))
	}
	return append(paras, model.Paragraph{TopBorder: true, SpacingAfter: 400})
}

func titleBlock(title string, cs model.Case) []model.Paragraph {
	return []model.Paragraph{
		centered(model.Run{Text: title, Bold: true, Size: TitleSize}, 400),
		{Runs: []model.Run{{Text: "Processo: " + cs.ProcessNumber, Bold: true, Size: BodySize}}, SpacingAfter: 100},
		{Runs: []model.Run{{Text: "Órgão: " + cs.Agency, Bold: true, Size: BodySize}}, SpacingAfter: 400},
		{Runs: []model.Run{{Text: salutation, Bold: true, Size: BodySize}}, SpacingAfter: 300},
	}
}

func heading(text string) model.Paragraph {
	return model.Paragraph{
		Runs:          []model.Run{{Text: text, Bold: true, Size: HeadingSize}},
		SpacingBefore: 300,
		SpacingAfter:  200,
	}
}

func bodyParagraph(text string) model.Paragraph {
	return model.Paragraph{
		Runs:            []model.Run{{Text: text, Size: BodySize}},
		Align:           model.AlignJustify,
		SpacingAfter:    200,
		FirstLineIndent: BodyFirstLineIndent,
	}
}

func closing(c model.Company, date time.Time) []model.Paragraph {
	return []model.Paragraph{
		{
			Runs:          []model.Run{{Text: fmt.Sprintf("%s, %s.", closingCity, LongDate(date)), Size: BodySize}},
			SpacingBefore: 400,
			SpacingAfter:  400,
		},
		centered(model.Run{Text: strings.Repeat("_", signatureLen)}, 100),
		centered(model.Run{Text: c.Name, Bold: true, Size: BodySize}, 100),
		centered(model.Run{Text: "CNPJ: " + c.TaxID, Size: ContactSize}, 0),
	}
}

func centered(r model.Run, after int) model.Paragraph {
	return model.Paragraph{Runs: []model.Run{r}, Align: model.AlignCenter, SpacingAfter: after}
}

// fitLogo scales the logo into a LogoBoundPx square keeping its aspect ratio.
func fitLogo(logo model.Logo) (*model.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(logo.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", logo.MIMEType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	w, h := LogoBoundPx, LogoBoundPx
	if cfg.Width > cfg.Height {
		h = max(1, cfg.Height*LogoBoundPx/cfg.Width)
	} else if cfg.Height > cfg.Width {
		w = max(1, cfg.Width*LogoBoundPx/cfg.Height)
	}

	format := model.ImageJPEG
	if strings.Contains(strings.ToLower(logo.MIMEType), "png") {
		format = model.ImagePNG
	}
	return &model.Image{Data: logo.Data, Format: format, WidthPx: w, HeightPx: h}, nil
}
