package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/message"
)

// Page is what the host hands to RenderPage: the page chrome template plus the body
// produced from the page's blocks.
type Page struct {
	Body            template.HTML
	Label           string
	TemplateContent string
	TemplateName    string
}

type Renderer struct {
	Context    context.Context
	Date       time.Time
	FootScript string
	HeadScript string
	Lang       string
	// MessagePrinter localizes the page title and the l10n template function. Keys
	// print unchanged without it.
	MessagePrinter *message.Printer
	Meta           string
	Organization   string
	Stylesheet     string
}

func (r *Renderer) RenderPage(page Page) (string, error) {
	date := r.Date
	if date.IsZero() {
		date = time.Now()
	}

	templateData := TemplateData{
		Values: Values{
			Body:         page.Body,
			Date:         date,
			FootScript:   template.HTML(r.FootScript),
			HeadScript:   template.HTML(r.HeadScript),
			Lang:         r.Lang,
			Meta:         template.HTML(r.Meta),
			Organization: r.Organization,
			Stylesheet:   template.HTML(r.Stylesheet),
			Title:        r.l10n(page.Label),
		},
	}

	templateContent := page.TemplateContent
	if templateContent == "" {
		templateContent = DefaultPageTemplate
	}

	return r.RenderOne(page.TemplateName, templateContent, templateData)
}

func (r *Renderer) RenderOne(templateName string, templateContent string, data any) (string, error) {
	funcs := sprig.FuncMap()
	funcs["l10n"] = r.l10n
	instance, err := template.New(templateName).Funcs(funcs).Parse(templateContent)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := instance.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (r *Renderer) l10n(key string, args ...any) string {
	if r.MessagePrinter == nil {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf(key, args...)
	}
	return r.MessagePrinter.Sprintf(key, args...)
}

type TemplateData struct {
	Values Values
}

type Values struct {
	Body         template.HTML
	Date         time.Time
	FootScript   template.HTML
	HeadScript   template.HTML
	Lang         string
	Meta         template.HTML
	Organization string
	Stylesheet   template.HTML
	Title        string
}

const DefaultPageTemplate = `<!DOCTYPE html>
<html lang="{{ .Values.Lang | default "en" }}">
<head>
<meta charset="utf-8">
<title>{{ .Values.Title }}</title>
{{ .Values.Meta }}
{{ .Values.HeadScript }}
{{ .Values.Stylesheet }}
</head>
<body>
<main>{{ .Values.Body }}</main>
<footer>{{ .Values.Organization }} {{ .Values.Date.Year }}</footer>
{{ .Values.FootScript }}
</body>
</html>`
