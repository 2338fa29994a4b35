package service

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"petition-backend/internal/shared/apperror"
	"petition-backend/petition/model"
)

var (
	acme      = model.Company{Name: "Acme Ltda", TaxID: "00.000.000/0001-00"}
	acmeCase  = model.Case{ProcessNumber: "123/2025", Agency: "Prefeitura Municipal"}
	fixedDate = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
)

func TestAssembleCounterArgumentsLetterhead(t *testing.T) {
	res, err := Assemble(Input{
		DocType: model.DocTypeCounterArguments,
		Company: acme,
		Case:    acmeCase,
		Date:    fixedDate,
	})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	documentXML := readDocumentXML(t, res.Bytes)
	require.Contains(t, documentXML, "CONTRARRAZÕES AO RECURSO ADMINISTRATIVO")
	require.Contains(t, documentXML, "ACME LTDA")
	require.Contains(t, documentXML, "00.000.000/0001-00")
	require.Contains(t, documentXML, "Processo: 123/2025")
	require.Contains(t, documentXML, "Órgão: Prefeitura Municipal")
	require.Contains(t, documentXML, "com endereço conforme cadastro")
	require.Contains(t, documentXML, "São Paulo, 15 de outubro de 2026.")
	require.Contains(t, documentXML, strings.Repeat("_", 50))
}

func TestAssembleUsesDefaultFillerForBlankParameters(t *testing.T) {
	for _, params := range []string{"", "   \n\t"} {
		res, err := Assemble(Input{DocType: model.DocTypeCounterArguments, Company: acme, Case: acmeCase, Parameters: params, Date: fixedDate})
		require.NoError(t, err)
		documentXML := readDocumentXML(t, res.Bytes)
		require.Contains(t, documentXML, "Os fatos específicos do caso demonstram a regularidade do procedimento adotado.")
	}
}

func TestAssembleInsertsParameters(t *testing.T) {
	res, err := Assemble(Input{
		DocType:    model.DocTypeDeadlineExtension,
		Company:    acme,
		Case:       acmeCase,
		Parameters: "O fornecedor do laudo técnico entrou em recesso coletivo.",
		Date:       fixedDate,
	})
	require.NoError(t, err)
	documentXML := readDocumentXML(t, res.Bytes)
	require.Contains(t, documentXML, "O fornecedor do laudo técnico entrou em recesso coletivo.")
	require.NotContains(t, documentXML, "circunstâncias alheias à vontade da requerente")
}

func TestAssembleContactLine(t *testing.T) {
	c := acme
	c.Address = "Rua das Flores, 10"
	c.Phone = "(11) 5555-0000"

	res, err := Assemble(Input{DocType: model.DocTypeBrandSubstitution, Company: c, Case: acmeCase, Date: fixedDate})
	require.NoError(t, err)
	documentXML := readDocumentXML(t, res.Bytes)
	require.Contains(t, documentXML, "Rua das Flores, 10")
	require.Contains(t, documentXML, ">(11) 5555-0000<")
	require.Contains(t, documentXML, "com endereço Rua das Flores, 10")

	c.Email = "juridico@acme.com.br"
	res, err = Assemble(Input{DocType: model.DocTypeBrandSubstitution, Company: c, Case: acmeCase, Date: fixedDate})
	require.NoError(t, err)
	require.Contains(t, readDocumentXML(t, res.Bytes), "juridico@acme.com.br | (11) 5555-0000")
}

func TestAssembleUppercasesAccentedNames(t *testing.T) {
	c := model.Company{Name: "Construções São João", TaxID: "1"}
	res, err := Assemble(Input{DocType: model.DocTypeNotificationDefense, Company: c, Case: acmeCase, Date: fixedDate})
	require.NoError(t, err)
	require.Contains(t, readDocumentXML(t, res.Bytes), "CONSTRUÇÕES SÃO JOÃO")
}

func TestAssembleConcurrently(t *testing.T) {
	names := []string{"Construções São João", "Ótica Índigo Ltda", "Água Clara Serviços"}
	want := []string{"CONSTRUÇÕES SÃO JOÃO", "ÓTICA ÍNDIGO LTDA", "ÁGUA CLARA SERVIÇOS"}
	for _, dt := range model.DocTypes() {
		for i := range names {
			dt, name, upper := dt, names[i], want[i]
			t.Run(string(dt)+"/"+upper, func(t *testing.T) {
				t.Parallel()
				res, err := Assemble(Input{
					DocType: dt,
					Company: model.Company{Name: name, TaxID: "1"},
					Case:    acmeCase,
					Date:    fixedDate,
				})
				require.NoError(t, err)
				require.Contains(t, readDocumentXML(t, res.Bytes), upper)
			})
		}
	}
}

func TestAssembleEmbedsLogo(t *testing.T) {
	logo := &model.Logo{Data: pngBytes(t, 200, 100), MIMEType: "image/png"}
	res, err := Assemble(Input{DocType: model.DocTypeAdministrativeAppeal, Company: acme, Case: acmeCase, Logo: logo, Date: fixedDate})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	documentXML := readDocumentXML(t, res.Bytes)
	require.Contains(t, documentXML, `<wp:extent cx="952500" cy="476250">`)
}

func TestAssembleSkipsUndecodableLogo(t *testing.T) {
	logo := &model.Logo{Data: []byte("<svg xmlns='http://www.w3.org/2000/svg'/>"), MIMEType: "image/svg+xml"}
	res, err := Assemble(Input{DocType: model.DocTypeAdministrativeAppeal, Company: acme, Case: acmeCase, Logo: logo, Date: fixedDate})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.NotContains(t, readDocumentXML(t, res.Bytes), "w:drawing")
}

func TestAssembleUnknownDocType(t *testing.T) {
	_, err := Assemble(Input{DocType: "habeas_corpus", Company: acme, Case: acmeCase})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestFitLogo(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{w: 300, h: 300, wantW: 100, wantH: 100},
		{w: 50, h: 200, wantW: 25, wantH: 100},
		{w: 1000, h: 1, wantW: 100, wantH: 1},
	}
	for _, tc := range cases {
		img, err := fitLogo(model.Logo{Data: pngBytes(t, tc.w, tc.h), MIMEType: "image/jpeg"})
		require.NoError(t, err)
		require.Equal(t, tc.wantW, img.WidthPx)
		require.Equal(t, tc.wantH, img.HeightPx)
		require.Equal(t, model.ImageJPEG, img.Format)
	}
}

func TestLongDate(t *testing.T) {
	require.Equal(t, "1 de março de 2025", LongDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "31 de dezembro de 2024", LongDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func readDocumentXML(t *testing.T, docxBytes []byte) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	require.NoError(t, err)
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			rc, err := file.Open()
			require.NoError(t, err)
			defer rc.Close()
			content, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(content)
		}
	}
	t.Fatal("word/document.xml missing")
	return ""
}
