package formatter

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/tordrt/migrationgen/internal/migration"
)

// TypeORMExtension is the file extension of rendered migrations
const TypeORMExtension = ".ts"

//go:embed templates/typeorm.ts.tpl
var templateFS embed.FS

const typeORMTemplate = "templates/typeorm.ts.tpl"

// TypeORMFormatter renders migration descriptors as TypeORM migration classes
type TypeORMFormatter struct {
	tpl *template.Template
}

// NewTypeORMFormatter parses the embedded migration template
func NewTypeORMFormatter() (*TypeORMFormatter, error) {
	byt, err := templateFS.ReadFile(typeORMTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	tpl, err := template.New("typeorm").
		Funcs(sprig.GenericFuncMap()).
		Funcs(template.FuncMap{"literal": literal}).
		Option("missingkey=error").
		Parse(string(byt))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &TypeORMFormatter{tpl: tpl}, nil
}

// Extension returns the file extension for rendered migrations
func (f *TypeORMFormatter) Extension() string {
	return TypeORMExtension
}

// Format writes the rendered migration to w. Nothing is written when
// rendering fails.
func (f *TypeORMFormatter) Format(w io.Writer, d *migration.Descriptor) error {
	var buf bytes.Buffer
	if err := f.tpl.Execute(&buf, d); err != nil {
		return fmt.Errorf("failed to render migration %s: %w", d.ClassName, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// literal renders a value as a JavaScript literal
func literal(v any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
