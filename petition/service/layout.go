package service

// Font sizes in half-points, spacing and indents in twips.
const (
	CompanyNameSize = 24
	ContactSize     = 20
	TitleSize       = 28
	HeadingSize     = 24
	BodySize        = 22

	BodyFirstLineIndent = 720
	PageMarginTwips     = 1440

	LogoBoundPx = 100
)

const (
	salutation   = "EXCELENTÍSSIMO(A) SENHOR(A) PREGOEIRO(A),"
	closingCity  = "São Paulo"
	signatureLen = 50
)

var ptMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}
