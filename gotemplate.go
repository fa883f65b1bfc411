package datafmt

import (
	"fmt"
	"io"
	"text/template"
)

// RenderTemplate executes a Go text/template once per record, writing each
// result on its own line. Templates see the record as map[string]any.
func RenderTemplate(w io.Writer, tmplStr string, ds Dataset) error {
	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	for _, rec := range ds {
		if err := tmpl.Execute(w, rec.Map()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
