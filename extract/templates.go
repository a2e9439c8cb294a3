package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"stylec/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	Kind       string
	Ext        string
	SourceFile string
}

func newValues(name config.TemplateFieldName, src string, kind outputKind) Values {
	base := filepath.Base(src)
	return Values{
		Context:    string(name),
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		Kind:       kind.name,
		Ext:        kind.ext,
		SourceFile: base,
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()
	funcMap["slug"] = slug.Make

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
