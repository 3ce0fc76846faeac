package view

import (
	"fmt"
	"io"
	"io/fs"
	"text/template"

	"github.com/saaskit/saaskit/internal/email"
)

// View is a parsed email template. Each template file defines a subject
// and a body block.
type View struct {
	tmpl *template.Template
}

// Parse loads the view with the given name from the file system. The file
// system is expected to contain *.tmpl files in its root directory.
func Parse(fileSys fs.FS, name string) (*View, error) {
	// View names are normally hardcoded, but they end up in filenames, so
	// refuse anything that could traverse directories.
	if err := validateName(name); err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).ParseFS(fileSys, name+".tmpl")
	if err != nil {
		return nil, err
	}

	for _, element := range []email.TemplateElement{email.ElementSubject, email.ElementBody} {
		if tmpl.Lookup(string(element)) == nil {
			return nil, fmt.Errorf("missing %s template", element)
		}
	}

	return &View{tmpl: tmpl}, nil
}

func (v *View) Render(w io.Writer, element email.TemplateElement, data any) error {
	return v.tmpl.ExecuteTemplate(w, string(element), data)
}

// validateName checks if all characters are alphanumeric, dashes or underscores.
func validateName(name string) error {
	for _, r := range name {
		ok := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("invalid character %v in view name: %s", r, name)
		}
	}

	return nil
}
