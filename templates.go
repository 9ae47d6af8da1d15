package promptkit

import (
	"embed"
	"io/fs"
)

//go:embed templates/career/*.txt
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in prompt templates (career chatbot
// system, evaluator, rejection and job match prompts) rooted so that names
// look like "career/system.txt". Pair it with pkgtemplate.WithFileSystem and
// pkgtemplate.SourceFromFS.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
