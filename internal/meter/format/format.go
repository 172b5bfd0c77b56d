// Package format renders meter responses as JSON, XML or CSV according to
// the client's Accept header.
package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/munnerz/goautoneg"
	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
)

// Content types understood by Negotiate.
const (
	JSON = "application/json"
	XML  = "application/xml"
	CSV  = "text/csv"
)

var supported = []string{JSON, XML, CSV}

// Tabular is implemented by bodies that can be flattened into CSV rows.
type Tabular interface {
	CSVRecords() [][]string
}

// Document is a rendered response body and its content type.
type Document struct {
	ContentType string
	Body        string
}

// Negotiate picks the best supported content type for accept. A missing or
// unsatisfiable header yields JSON.
func Negotiate(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return JSON
	}
	if best := goautoneg.Negotiate(accept, supported); best != "" {
		return best
	}
	return JSON
}

// Render serializes body for the content type chosen from accept.
func Render(accept string, body any) (Document, error) {
	contentType := Negotiate(accept)
	switch contentType {
	case XML:
		out, err := renderXML(body)
		return Document{ContentType: XML, Body: out}, err
	case CSV:
		if tab, ok := body.(Tabular); ok {
			out, err := renderCSV(tab)
			return Document{ContentType: CSV, Body: out}, err
		}
		// Bodies without rows (errors) fall back to JSON.
		out, err := renderJSON(body)
		return Document{ContentType: JSON, Body: out}, err
	default:
		out, err := renderJSON(body)
		return Document{ContentType: JSON, Body: out}, err
	}
}

func renderJSON(body any) (string, error) {
	out, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(out), nil
}

// renderXML wraps the JSON document as the text of a single root element.
func renderXML(body any) (string, error) {
	payload, err := renderJSON(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header[:len(xml.Header)-1])
	buf.WriteString("<root>")
	if err := xml.EscapeText(&buf, []byte(payload)); err != nil {
		return "", fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteString("</root>")
	return buf.String(), nil
}

func renderCSV(tab Tabular) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(meterdomain.Columns); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	if err := w.WriteAll(tab.CSVRecords()); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	return buf.String(), nil
}
