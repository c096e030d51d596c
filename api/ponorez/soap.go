package ponorez

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
const reservationNS = "http://hawaiifun.org/reservation/services/2012/"

// soapParam is one element of an operation body. Value is either a string or
// a nested []soapParam.
type soapParam struct {
	Name  string
	Value any
}

func buildEnvelope(operation string, params []soapParam) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString(`<soapenv:Envelope xmlns:soapenv="` + soapEnvelopeNS + `" xmlns:ws="` + reservationNS + `">`)
	buf.WriteString(`<soapenv:Header/><soapenv:Body>`)
	buf.WriteString("<ws:" + operation + ">")
	if err := writeParams(&buf, params); err != nil {
		return nil, err
	}
	buf.WriteString("</ws:" + operation + ">")
	buf.WriteString(`</soapenv:Body></soapenv:Envelope>`)
	return buf.Bytes(), nil
}

func writeParams(buf *bytes.Buffer, params []soapParam) error {
	for _, p := range params {
		buf.WriteString("<" + p.Name + ">")
		switch v := p.Value.(type) {
		case string:
			if err := xml.EscapeText(buf, []byte(v)); err != nil {
				return err
			}
		case []soapParam:
			if err := writeParams(buf, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported soap param %s of type %T", p.Name, p.Value)
		}
		buf.WriteString("</" + p.Name + ">")
	}
	return nil
}

type xmlNode struct {
	name     string
	text     strings.Builder
	isNil    bool
	children []*xmlNode
}

// value converts the node into map / []any / string the way a JSON decoder
// would: repeated children become a list, leaves become their text.
func (n *xmlNode) value() any {
	if n.isNil {
		return nil
	}
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text.String())
	}
	out := make(map[string]any, len(n.children))
	for _, c := range n.children {
		v := c.value()
		existing, seen := out[c.name]
		switch {
		case !seen:
			out[c.name] = v
		case isList(existing):
			out[c.name] = append(existing.([]any), v)
		default:
			out[c.name] = []any{existing, v}
		}
	}
	return out
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func parseTree(r io.Reader) (*xmlNode, error) {
	dec := xml.NewDecoder(r)
	root := &xmlNode{name: "#document"}
	stack := []*xmlNode{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse soap response: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "nil" && a.Value == "true" {
					node.isNil = true
				}
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}
	return root, nil
}

func findChild(n *xmlNode, name string) *xmlNode {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// decodeEnvelope returns the operation response element as a loosely typed
// value, or a *FaultError.
func decodeEnvelope(body []byte) (any, error) {
	root, err := parseTree(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	soapBody := findChild(findChild(root, "Envelope"), "Body")
	if soapBody == nil || len(soapBody.children) == 0 {
		return nil, errors.New("soap response has no body")
	}
	resp := soapBody.children[0]
	if resp.name == "Fault" {
		return nil, &FaultError{
			Code:    strings.TrimSpace(textOf(findChild(resp, "faultcode"))),
			Message: strings.TrimSpace(textOf(findChild(resp, "faultstring"))),
		}
	}
	return resp.value(), nil
}

func textOf(n *xmlNode) string {
	if n == nil {
		return ""
	}
	return n.text.String()
}
