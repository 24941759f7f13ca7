package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/playwright-community/playwright-go"
)

const resumeTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, serif; margin: 2.2cm; color: #1a1a1a; }
  h1 { font-size: 18pt; border-bottom: 1px solid #999; padding-bottom: 4px; }
  pre { font-family: inherit; font-size: 10.5pt; white-space: pre-wrap; line-height: 1.45; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<pre>{{.Body}}</pre>
</body>
</html>`

// ChromiumRenderer renders resume text to PDF through a headless Chromium
// driven by Playwright.
type ChromiumRenderer struct {
	tmpl *template.Template
}

// NewChromiumRenderer parses the built-in resume page template.
func NewChromiumRenderer() (*ChromiumRenderer, error) {
	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(resumeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse resume template: %w", err)
	}
	return &ChromiumRenderer{tmpl: tmpl}, nil
}

// RenderPDF executes the template and prints the page as an A4 PDF.
func (r *ChromiumRenderer) RenderPDF(title, body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, struct {
		Title string
		Body  string
	}{Title: title, Body: body}); err != nil {
		return nil, fmt.Errorf("execute resume template: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(buf.String(), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("set page content: %w", err)
	}

	pdf, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
