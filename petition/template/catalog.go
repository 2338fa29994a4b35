package template

import (
	"fmt"
	"strings"

	"petition-backend/petition/model"
)

// Role tells the assembler how to fill a line.
type Role int

const (
	// RoleBody lines are emitted verbatim.
	RoleBody Role = iota
	// RoleIntro is replaced by the company's opening sentence.
	RoleIntro
	// RoleSlot carries the caller's parameter text; Text is the filler used
	// when no parameter is given.
	RoleSlot
)

// Line is one body paragraph of a section.
type Line struct {
	Role Role
	Text string
}

// Section is a numbered heading followed by its paragraphs.
type Section struct {
	Heading string
	Lines   []Line
}

// Template is the fixed skeleton of a petition.
type Template struct {
	DocType  model.DocType
	Title    string
	Sections []Section
}

func body(text string) Line   { return Line{Role: RoleBody, Text: text} }
func slot(filler string) Line { return Line{Role: RoleSlot, Text: filler} }

var intro = Line{Role: RoleIntro}

var closingLines = []Line{
	body("Termos em que,"),
	body("Pede deferimento."),
}

func withClosing(lines ...Line) []Line {
	return append(lines, closingLines...)
}

var catalog = map[model.DocType]Template{
	model.DocTypeCounterArguments: {
		Title: "CONTRARRAZÕES AO RECURSO ADMINISTRATIVO",
		Sections: []Section{
			{
				Heading: "I - DOS FATOS",
				Lines: []Line{
					intro,
					body("A empresa recorrente interpôs recurso administrativo questionando a decisão proferida pelo Pregoeiro, alegando supostas irregularidades no certame licitatório."),
					body("Ocorre que, conforme se demonstrará adiante, as alegações apresentadas não encontram respaldo técnico, jurídico ou fático, razão pela qual devem ser rejeitadas."),
					slot("Os fatos específicos do caso demonstram a regularidade do procedimento adotado."),
				},
			},
			{
				Heading: "II - DO DIREITO",
				Lines: []Line{
					body("DA LEGALIDADE DO PROCEDIMENTO ADOTADO"),
					body("O procedimento licitatório foi conduzido em estrita observância aos princípios constitucionais da legalidade, impessoalidade, moralidade, publicidade e eficiência, conforme estabelecido no art. 37 da Constituição Federal."),
					body("A Lei nº 14.133/2021 (Nova Lei de Licitações) estabelece em seu art. 3º que a licitação destina-se a garantir a observância do princípio constitucional da isonomia, a seleção da proposta acentuadamente mais vantajosa para a administração e a promoção do desenvolvimento nacional sustentável."),
					body("DA IMPROCEDÊNCIA DAS ALEGAÇÕES"),
					body("As alegações apresentadas pela recorrente não merecem prosperar, uma vez que carecem de fundamentação jurídica adequada e de respaldo nos autos do processo."),
					body("Todos os atos praticados foram devidamente motivados e publicados, garantindo-se ampla transparência e possibilidade de contraditório, em observância ao devido processo legal administrativo."),
				},
			},
			{
				Heading: "III - DO PEDIDO",
				Lines: withClosing(
					body("Diante do exposto, requer-se:"),
					body("a) O conhecimento e provimento das presentes contrarrazões;"),
					body("b) A rejeição integral do recurso interposto pela empresa concorrente;"),
					body("c) A manutenção da decisão proferida pelo Pregoeiro;"),
					body("d) Sejam os autos remetidos à autoridade superior para ratificação."),
				),
			},
		},
	},
	model.DocTypeAdministrativeAppeal: {
		Title: "RECURSO ADMINISTRATIVO",
		Sections: []Section{
			{
				Heading: "I - DOS FATOS",
				Lines: []Line{
					intro,
					body("Vem a requerente, tempestivamente, interpor o presente RECURSO ADMINISTRATIVO contra a decisão que [descrever a decisão recorrida]."),
					slot("Os fatos que motivam o presente recurso estão detalhadamente descritos nos autos."),
					body("A decisão ora recorrida viola frontalmente os princípios constitucionais aplicáveis às licitações públicas."),
				},
			},
			{
				Heading: "II - DO DIREITO",
				Lines: []Line{
					body("DO CABIMENTO DO RECURSO"),
					body("O presente recurso encontra amparo no art. 165 da Lei nº 14.133/2021, que assegura o direito de recurso aos licitantes."),
					body("DA ILEGALIDADE DA DECISÃO RECORRIDA"),
					body("A decisão proferida viola os princípios da isonomia, da competitividade e da economicidade, conforme demonstrado a seguir:"),
					body("A interpretação adotada contraria jurisprudência pacífica do Tribunal de Contas da União sobre a matéria."),
					body("Os requisitos impostos são manifestamente descabidos e criam restrições indevidas à participação no certame."),
				},
			},
			{
				Heading: "III - DO PEDIDO",
				Lines: withClosing(
					body("Diante do exposto, requer-se:"),
					body("a) O conhecimento e provimento do presente recurso;"),
					body("b) A reforma da decisão recorrida;"),
					body("c) Sejam observados os princípios constitucionais aplicáveis;"),
					body("d) A produção de todas as provas admitidas em direito."),
				),
			},
		},
	},
	model.DocTypeBrandSubstitution: {
		Title: "SOLICITAÇÃO DE SUBSTITUIÇÃO DE MARCA",
		Sections: []Section{
			{
				Heading: "I - DO PEDIDO",
				Lines: []Line{
					intro,
					body("Vem requerer a SUBSTITUIÇÃO DE MARCA do produto ofertado na licitação em referência."),
					slot("A necessidade de substituição decorre de circunstâncias supervenientes."),
				},
			},
			{
				Heading: "II - DA JUSTIFICATIVA",
				Lines: []Line{
					body("A marca originalmente proposta encontra-se temporariamente indisponível no mercado devido a [motivo]."),
					body("A marca substituta atende integralmente às especificações técnicas exigidas no edital."),
					body("A substituição não implica em alteração de preço ou condições da proposta."),
					body("Anexa-se documentação técnica comprobatória da equivalência entre os produtos."),
				},
			},
			{
				Heading: "III - DA CONCLUSÃO",
				Lines: withClosing(
					body("A substituição pretendida está prevista no edital e na legislação aplicável."),
					body("Não há prejuízo à Administração ou aos demais licitantes."),
					body("Requer-se o deferimento da presente solicitação de substituição de marca."),
				),
			},
		},
	},
	model.DocTypeDeadlineExtension: {
		Title: "SOLICITAÇÃO DE PRORROGAÇÃO DE PRAZO",
		Sections: []Section{
			{
				Heading: "I - DO PEDIDO",
				Lines: []Line{
					intro,
					body("Vem requerer a PRORROGAÇÃO DO PRAZO para [especificar o ato: apresentação de documentos, cumprimento de diligência, etc.]."),
					slot("A necessidade de prorrogação decorre de circunstâncias alheias à vontade da requerente."),
				},
			},
			{
				Heading: "II - DA JUSTIFICATIVA",
				Lines: []Line{
					body("O prazo originalmente estabelecido mostrou-se insuficiente devido a [motivo específico]."),
					body("A empresa envidou todos os esforços para atender ao prazo inicialmente fixado."),
					body("A prorrogação não causará prejuízos ao certame ou ao interesse público."),
					body("Solicita-se prazo adicional de [número] dias úteis para cumprimento integral da exigência."),
				},
			},
			{
				Heading: "III - DA CONCLUSÃO",
				Lines: withClosing(
					body("A prorrogação de prazos é expressamente prevista na legislação, desde que devidamente justificada."),
					body("O deferimento do pedido preserva o interesse público e a competitividade do certame."),
					body("Requer-se o deferimento da presente solicitação de prorrogação de prazo."),
				),
			},
		},
	},
	model.DocTypeNotificationDefense: {
		Title: "DEFESA CONTRA NOTIFICAÇÃO",
		Sections: []Section{
			{
				Heading: "I - DOS FATOS",
				Lines: []Line{
					intro,
					body("Vem apresentar DEFESA em face da notificação recebida em [data], que aponta suposta irregularidade."),
					slot("Os fatos narrados na notificação não correspondem à realidade."),
				},
			},
			{
				Heading: "II - DA DEFESA",
				Lines: []Line{
					body("DA INEXISTÊNCIA DE IRREGULARIDADE"),
					body("Contrariamente ao alegado na notificação, a empresa agiu em conformidade com todas as normas aplicáveis."),
					body("A documentação acostada comprova a regularidade da conduta adotada."),
					body("DO CUMPRIMENTO DAS OBRIGAÇÕES CONTRATUAIS"),
					body("Todas as obrigações previstas no contrato foram rigorosamente cumpridas nos prazos estabelecidos."),
					body("Eventual divergência de interpretação não caracteriza irregularidade ou má-fé."),
				},
			},
			{
				Heading: "III - DO PEDIDO",
				Lines: withClosing(
					body("Diante do exposto, requer-se:"),
					body("a) O acolhimento da presente defesa;"),
					body("b) O arquivamento do procedimento instaurado;"),
					body("c) A manutenção da empresa em situação regular;"),
					body("d) Sejam considerados os documentos anexos."),
				),
			},
		},
	},
}

// ErrUnknownDocType is returned by Lookup for types outside the catalog.
type ErrUnknownDocType struct {
	DocType model.DocType
}

func (e ErrUnknownDocType) Error() string {
	return fmt.Sprintf("no template for docType %q", e.DocType)
}

// Lookup returns the template for docType.
func Lookup(docType model.DocType) (Template, error) {
	tpl, ok := catalog[docType]
	if !ok {
		return Template{}, ErrUnknownDocType{DocType: docType}
	}
	tpl.DocType = docType
	return tpl, nil
}

// Validate reports structural defects: a missing title or heading, an empty
// section, a blank body line, or a slot count other than one.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("template %s: empty title", t.DocType)
	}
	if len(t.Sections) == 0 {
		return fmt.Errorf("template %s: no sections", t.DocType)
	}
	slots := 0
	for i, s := range t.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			return fmt.Errorf("template %s: section %d has no heading", t.DocType, i)
		}
		if len(s.Lines) == 0 {
			return fmt.Errorf("template %s: section %q is empty", t.DocType, s.Heading)
		}
		for j, line := range s.Lines {
			switch line.Role {
			case RoleSlot:
				slots++
				if strings.TrimSpace(line.Text) == "" {
					return fmt.Errorf("template %s: slot in %q has no default text", t.DocType, s.Heading)
				}
			case RoleBody:
				if strings.TrimSpace(line.Text) == "" {
					return fmt.Errorf("template %s: line %d of %q is blank", t.DocType, j, s.Heading)
				}
			}
		}
	}
	if slots != 1 {
		return fmt.Errorf("template %s: expected one parameter slot, found %d", t.DocType, slots)
	}
	return nil
}
