package monthlog

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpWordWrap is the width at which the rendered help is wrapped.
const helpWordWrap = 100

// componentDoc is the documentation of a component, extracted from its
// description.
type componentDoc struct {
	kind string // "input", "output", etc.
	name string
	help string
	keys []helpConfigKey
}

type helpConfigKey struct {
	name     string // config key name
	typ      string // config key type
	def      string // default value
	required bool
	desc     string
}

// componentDocs returns the documentation of the components matching name,
// or of all of them if name is "*".
func componentDocs(name string, comp Components) ([]componentDoc, error) {
	all := name == "*"
	match := func(n string) bool { return all || strings.EqualFold(n, name) }

	var docs []componentDoc
	add := func(kind, name, help string, cfg interface{}) error {
		keys, err := configKeysFromStruct(cfg)
		if err != nil {
			return fmt.Errorf("%s %q: %v", kind, name, err)
		}
		docs = append(docs, componentDoc{kind: kind, name: name, help: help, keys: keys})
		return nil
	}

	for _, d := range comp.Inputs {
		if match(d.Name) {
			if err := add("input", d.Name, d.Help, d.Config); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range comp.Outputs {
		if match(d.Name) {
			if err := add("output", d.Name, d.Help, d.Config); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range comp.Uploads {
		if match(d.Name) {
			if err := add("upload", d.Name, d.Help, d.Config); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range comp.Metrics {
		if match(d.Name) {
			if err := add("metrics", d.Name, d.Help, d.Config); err != nil {
				return nil, err
			}
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("component not found: %s", name)
	}
	return docs, nil
}

// PrintHelp writes the markdown help of the component identified by its
// name, or of all components if name is '*'.
//
// The help message includes the component's description as well as the
// help messages for all component's configuration keys.
func PrintHelp(w io.Writer, name string, comp Components) error {
	docs, err := componentDocs(name, comp)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		fmt.Fprintf(w, "## %s *%s*\n\n", strings.Title(doc.kind), doc.name)
		fmt.Fprintln(w, "### Overview")
		fmt.Fprintln(w, doc.help)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Configuration")
		if len(doc.keys) == 0 {
			fmt.Fprintf(w, "No configuration available\n\n")
			continue
		}
		fmt.Fprintf(w, "\nKeys available in the `[%s.config]` section:\n\n", doc.kind)
		fmt.Fprintln(w, "|Name|Type|Default|Required|Description|")
		fmt.Fprintln(w, "|----|:--:|:-----:|:------:|-----------|")
		for _, k := range doc.keys {
			fmt.Fprintf(w, "| %v| %v| %v| %t| %v|\n", k.name, k.typ, k.def, k.required, k.desc)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// RenderHelpMarkdown renders the markdown help of PrintHelp so that it can
// be printed on a terminal.
func RenderHelpMarkdown(w io.Writer, name string, comp Components) error {
	var md strings.Builder
	if err := PrintHelp(&md, name, comp); err != nil {
		return err
	}

	r, err := glamour.NewTermRenderer(
		// detect background color and pick either the default dark or light theme
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(helpWordWrap),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(md.String())
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}

func configKeysFromStruct(cfg interface{}) ([]helpConfigKey, error) {
	var keys []helpConfigKey

	tf := reflect.TypeOf(cfg).Elem()
	for i := 0; i < tf.NumField(); i++ {
		f := tf.Field(i)

		// skip unexported fields
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		key, err := newHelpConfigKeyFromField(f)
		if err != nil {
			return nil, fmt.Errorf("error at exported key %d: %v", i, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

func newHelpConfigKeyFromField(f reflect.StructField) (helpConfigKey, error) {
	h := helpConfigKey{
		name:     f.Name,
		desc:     f.Tag.Get("help"),
		def:      f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}

	switch f.Type.Kind() {
	case reflect.Int, reflect.Int64:
		h.typ = "int"
	case reflect.Uint64:
		if f.Type.Name() == "SizeBytes" {
			h.typ = "size"
		} else {
			h.typ = "int"
		}
	case reflect.String:
		h.typ = "string"
		h.def = `"` + h.def + `"`
	case reflect.Slice:
		switch f.Type.Elem().Kind() {
		case reflect.String:
			h.typ = "array of strings"
		case reflect.Int:
			h.typ = "array of ints"
		default:
			return h, fmt.Errorf("config key %q: unsupported type array of %s", f.Name, f.Type.Elem())
		}
	case reflect.Bool:
		h.typ = "bool"
	default:
		return h, fmt.Errorf("config key %q: unsupported type", f.Name)
	}

	return h, nil
}
