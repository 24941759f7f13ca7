package render

// Renderer turns tailored resume text into a PDF document. PDF generation is
// optional in the tailoring flow: a nil renderer or a render error leaves the
// YAML and highlights artifacts intact.
type Renderer interface {
	RenderPDF(title, body string) ([]byte, error)
}
