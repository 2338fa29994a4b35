package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

const (
	wpNamespace  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	aNamespace   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	picNamespace = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// xmlNode is an element tree whose names already carry their prefix
// ("w:p"), so the encoder writes them verbatim.
type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

// el builds an element from alternating attribute name/value pairs.
func el(name string, attrs ...string) *xmlNode {
	node := &xmlNode{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		node.Attr = append(node.Attr, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	return node
}

func (n *xmlNode) add(children ...*xmlNode) *xmlNode {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

func textNode(text string) *xmlNode {
	return &xmlNode{IsText: true, Text: text}
}

func encodeXMLNode(encoder *xml.Encoder, node *xmlNode) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData([]byte(node.Text)))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

// encodeXMLDocument writes the declaration, then rootStart, the encoded
// children of root and the matching end tag. The root tag is written by hand
// because encoding/xml cannot emit prefixed namespace declarations.
func encodeXMLDocument(root *xmlNode, rootStart string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(rootStart)

	encoder := xml.NewEncoder(&buf)
	for _, child := range root.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return nil, err
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	buf.WriteString("</" + root.Name.Local + ">")
	return buf.Bytes(), nil
}

func rootStartTag(name string, namespaces [][2]string) string {
	var b strings.Builder
	b.WriteString("<" + name)
	for _, ns := range namespaces {
		b.WriteString(` xmlns`)
		if ns[0] != "" {
			b.WriteString(":" + ns[0])
		}
		b.WriteString(`="` + ns[1] + `"`)
	}
	b.WriteString(">")
	return b.String()
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// validateDocumentXML re-parses the rendered body with namespaces resolved and
// rejects nested paragraphs or run properties that follow run text.
func validateDocumentXML(content []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Space == "" {
				return fmt.Errorf("document.xml element %s has no namespace", t.Name.Local)
			}
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>")
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run")
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}
