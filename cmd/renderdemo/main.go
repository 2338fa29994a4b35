package main

// Write sample petitions for manual inspection in a word processor:
//   go run ./cmd/renderdemo -type all -out ./out

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"petition-backend/petition/model"
	"petition-backend/petition/service"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for generated DOCX files")
	docType := flag.String("type", "all", "docType to render, or all")
	logoPath := flag.String("logo", "", "optional PNG or JPEG logo")
	params := flag.String("params", "", "text inserted at the parameter slot")
	flag.Parse()

	types := model.DocTypes()
	if *docType != "all" {
		dt, err := model.ParseDocType(*docType)
		if err != nil {
			fail(err)
		}
		types = []model.DocType{dt}
	}

	var logo *model.Logo
	if *logoPath != "" {
		data, err := os.ReadFile(*logoPath)
		if err != nil {
			fail(err)
		}
		logo = &model.Logo{Data: data, MIMEType: mimetype.Detect(data).String()}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fail(err)
	}
	for _, dt := range types {
		in := sampleInput(dt, *params, logo)
		res, err := service.Assemble(in)
		if err != nil {
			fail(fmt.Errorf("%s: %w", dt, err))
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", dt, w)
		}
		path := filepath.Join(*outDir, string(dt)+".docx")
		if err := writeOutputs(path, in, res.Bytes); err != nil {
			fail(err)
		}
		if err := checkDocumentXML(res.Bytes); err != nil {
			fail(fmt.Errorf("%s: %w", dt, err))
		}
		fmt.Printf("OK: wrote %s\n", path)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "renderdemo: %v\n", err)
	os.Exit(1)
}

func sampleInput(dt model.DocType, params string, logo *model.Logo) service.Input {
	return service.Input{
		DocType: dt,
		Company: model.Company{
			Name:    "Construtora Horizonte Ltda",
			TaxID:   "12.345.678/0001-90",
			Email:   "licitacoes@horizonte.com.br",
			Phone:   "(11) 3456-7890",
			Address: "Rua das Palmeiras, 250, Centro, São Paulo/SP",
		},
		Case: model.Case{
			ProcessNumber: "Pregão Eletrônico nº 45/2024",
			Agency:        "Secretaria Municipal de Obras",
		},
		Parameters: params,
		Logo:       logo,
	}
}

func writeOutputs(path string, in service.Input, docx []byte) error {
	if err := os.WriteFile(path, docx, 0o644); err != nil {
		return err
	}
	in.Logo = nil
	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(strings.TrimSuffix(path, ".docx")+"_input.json", payload, 0o644)
}

// checkDocumentXML verifies word/document.xml is well-formed.
func checkDocumentXML(docx []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		dec := xml.NewDecoder(rc)
		for {
			if _, err := dec.Token(); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("document.xml: %w", err)
			}
		}
	}
	return errors.New("document.xml not found in docx")
}
