package monthlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/rasky/toml"
)

// The configuration is parsed from TOML format. Each of Input, Output,
// Upload and Metrics have a separate section (table) in the file containing
// a key called "Name" that specifies which component will be used.
//
// Then, there are sub-tables called [input.config], [output.config], etc.
// that contain configuration specific of each component, and directly map to
// the *Config structure of the component description.
//
// Since the chosen components are not known before having read the file,
// component configurations are captured as toml.Primitive and decoded in a
// second pass into the structure provided by the description.

// Names of the components used when the configuration doesn't name them.
const (
	DefaultInput  = "Source"
	DefaultOutput = "Text"
)

// ConfigInput specifies the configuration for the input component.
type ConfigInput struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *InputDesc
}

// ConfigOutput specifies the configuration for the output component.
type ConfigOutput struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *OutputDesc
}

// ConfigUpload specifies the configuration for the (optional) upload
// component.
type ConfigUpload struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *UploadDesc
}

// ConfigMetrics holds the (optional) metrics configuration.
type ConfigMetrics struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *MetricsDesc
}

// A Config specifies which components produce a report, and how they're
// configured.
type Config struct {
	Input   ConfigInput
	Output  ConfigOutput
	Upload  ConfigUpload
	Metrics ConfigMetrics
}

// String returns a string representation of the exported fields of c.
func (c *Config) String() string {
	return fmt.Sprintf("Input:{Name:%s} Output:{Name:%s} Upload:{Name:%s} Metrics:{Name:%s}",
		c.Input.Name, c.Output.Name, c.Upload.Name, c.Metrics.Name)
}

// NewConfig returns the configuration used when no configuration file is
// given: default input and output, no upload and no metrics.
func NewConfig(comp Components) (*Config, error) {
	return NewConfigFromToml(strings.NewReader(""), comp)
}

// NewConfigFromToml creates a Config from a reader reading from a TOML
// configuration. comp describes all the existing components.
//
// ${VAR} and $VAR references are replaced with the value of the
// corresponding environment variable before parsing.
func NewConfigFromToml(f io.Reader, comp Components) (*Config, error) {
	f, err := replaceEnvVars(f, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("can't replace config with env vars: %v", err)
	}

	cfg := Config{}
	md, err := toml.DecodeReader(f, &cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration: %v", err)
	}

	if cfg.Input.Name == "" {
		cfg.Input.Name = DefaultInput
	}
	if cfg.Output.Name == "" {
		cfg.Output.Name = DefaultOutput
	}

	for i := range comp.Inputs {
		if strings.EqualFold(comp.Inputs[i].Name, cfg.Input.Name) {
			cfg.Input.desc = &comp.Inputs[i]
			break
		}
	}
	if cfg.Input.desc == nil {
		return nil, fmt.Errorf("input does not exist: %q", cfg.Input.Name)
	}

	for i := range comp.Outputs {
		if strings.EqualFold(comp.Outputs[i].Name, cfg.Output.Name) {
			cfg.Output.desc = &comp.Outputs[i]
			break
		}
	}
	if cfg.Output.desc == nil {
		return nil, fmt.Errorf("output does not exist: %q", cfg.Output.Name)
	}

	if cfg.Upload.Name != "" {
		for i := range comp.Uploads {
			if strings.EqualFold(comp.Uploads[i].Name, cfg.Upload.Name) {
				cfg.Upload.desc = &comp.Uploads[i]
				break
			}
		}
		if cfg.Upload.desc == nil {
			return nil, fmt.Errorf("upload does not exist: %q", cfg.Upload.Name)
		}
	}

	if cfg.Metrics.Name != "" {
		for i := range comp.Metrics {
			if strings.EqualFold(comp.Metrics[i].Name, cfg.Metrics.Name) {
				cfg.Metrics.desc = &comp.Metrics[i]
				break
			}
		}
		if cfg.Metrics.desc == nil {
			return nil, fmt.Errorf("metrics does not exist: %q", cfg.Metrics.Name)
		}
	}

	// Decode each component configuration into a fresh copy of the
	// structure given by its description.
	cfg.Input.DecodedConfig, err = decodeAndCheckConfig(md, "input", cfg.Input.Name, cfg.Input.Config, cfg.Input.desc.Config)
	if err != nil {
		return nil, err
	}

	cfg.Output.DecodedConfig, err = decodeAndCheckConfig(md, "output", cfg.Output.Name, cfg.Output.Config, cfg.Output.desc.Config)
	if err != nil {
		return nil, err
	}

	if cfg.Upload.desc != nil {
		cfg.Upload.DecodedConfig, err = decodeAndCheckConfig(md, "upload", cfg.Upload.Name, cfg.Upload.Config, cfg.Upload.desc.Config)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Metrics.desc != nil {
		cfg.Metrics.DecodedConfig, err = decodeAndCheckConfig(md, "metrics", cfg.Metrics.Name, cfg.Metrics.Config, cfg.Metrics.desc.Config)
		if err != nil {
			return nil, err
		}
	}

	// Abort if there's any unknown key in the configuration file
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("invalid keys in configuration file: %v", keys)
	}

	return &cfg, nil
}

// replaceEnvVars replaces any string in the format ${VALUE} or $VALUE with
// the corresponding $VALUE environment variable.
func replaceEnvVars(f io.Reader, mapper func(string) string) (io.Reader, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("error reading input: %v", err)
	}

	return strings.NewReader(os.Expand(buf.String(), mapper)), nil
}

// cloneConfig returns a pointer to a new zero value of the type pointed to
// by i.
func cloneConfig(i interface{}) interface{} {
	return reflect.New(reflect.ValueOf(i).Elem().Type()).Interface()
}

func decodeAndCheckConfig(md toml.MetaData, typ, name string, prim *toml.Primitive, descCfg interface{}) (interface{}, error) {
	if prim != nil && !hasConfig(descCfg) {
		return nil, fmt.Errorf("%s %q: doesn't accept any configuration", typ, name)
	}

	dcfg := cloneConfig(descCfg)
	if prim != nil {
		if err := md.PrimitiveDecode(*prim, dcfg); err != nil {
			return nil, fmt.Errorf("%s %q: error parsing config: %v", typ, name, err)
		}
	}

	if req := CheckRequiredFields(dcfg); req != "" {
		return nil, fmt.Errorf("%s %q: %w", typ, name, ErrorRequiredField{req})
	}

	return dcfg, nil
}

// hasConfig reports whether the structure pointed to by cfg has at least
// one field.
func hasConfig(cfg interface{}) bool {
	return reflect.TypeOf(cfg).Elem().NumField() != 0
}

// RequiredFields returns the names of the underlying configuration structure
// fields which are tagged as required. To tag a field as being required, a
// "required" struct tag must be present and set to true.
func RequiredFields(cfg interface{}) []string {
	var fields []string

	tf := reflect.TypeOf(cfg).Elem()
	for i := 0; i < tf.NumField(); i++ {
		field := tf.Field(i)
		if field.Tag.Get("required") == "true" {
			fields = append(fields, field.Name)
		}
	}

	return fields
}

// CheckRequiredFields checks that all fields that are tagged as required in
// cfg's type have actually been set to a value other than the field type
// zero value. It returns the name of the first required field that is not
// set, or an empty string.
func CheckRequiredFields(cfg interface{}) string {
	rv := reflect.ValueOf(cfg).Elem()
	for _, name := range RequiredFields(cfg) {
		if rv.FieldByName(name).IsZero() {
			return name
		}
	}

	return ""
}

// ErrorRequiredField describes the absence of a required field in a
// component configuration.
type ErrorRequiredField struct {
	Field string // Field is the name of the missing field
}

func (e ErrorRequiredField) Error() string {
	return fmt.Sprintf("%q is a required field", e.Field)
}
