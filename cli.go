package monthlog

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	log "github.com/sirupsen/logrus"
)

// Use `-ldflags="-X 'github.com/monthlog/monthlog.BuildVersion=someversion'"`
// when building to set this value.
var BuildVersion = "-- unknown --"

// MainCLI provides a command-line interface to Main, building the report
// of the input named by the first command line argument into the output
// named by the second, with the provided components.
//
// The following options are available:
//  -config: TOML file configuring the components (defaults are used otherwise)
//  -help: prints the help of a component ('*' for all of them)
//  -version: prints the build version
//  -v: verbose logging (not compatible with -q)
//  -q: quiet logging (not compatible with -v)
//  -pretty: logs in textual format instead of JSON format
//
// The returned error, if any, has already been logged unless it's a usage
// error, and should be turned into an exit code with ExitCode.
func MainCLI(components Components) error {
	return RunCLI(os.Args[0], os.Args[1:], os.Stderr, components)
}

// RunCLI is MainCLI with explicit program name, arguments and diagnostic
// output.
func RunCLI(prog string, args []string, stderr io.Writer, components Components) error {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(stderr)

	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagConfig  = fs.String("config", "", "TOML `file` configuring the components")
		flagHelp    = fs.String("help", "", "show help for a `component` (input/output/upload/metrics) (use '*' to dump all)")
		flagVersion = fs.Bool("version", false, "print build version number")
		flagVerbose = fs.Bool("v", false, "verbose logging (debug level)")
		flagQuiet   = fs.Bool("q", false, "quiet logging (warn level)")
		flagPretty  = fs.Bool("pretty", false, "human-readable logging (unstructured logging)")
	)
	fs.Usage = displayProgramUsage(fs, stderr, components)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *flagHelp != "" {
		if err := RenderHelpMarkdown(stderr, *flagHelp, components); err != nil {
			log.WithError(err).Error("can't print help")
			return err
		}
		return nil
	}

	if *flagVersion {
		fmt.Fprintf(stderr, "monthlog version: %s\n", BuildVersion)
		return nil
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return ErrUsage
	}

	if *flagVerbose && *flagQuiet {
		fmt.Fprintln(stderr, "-v and -q are mutually exclusive")
		return fmt.Errorf("%w: logging can't both be verbose and quiet", ErrUsage)
	}

	log.SetLevel(log.InfoLevel)
	if *flagVerbose {
		log.SetLevel(log.DebugLevel)
	}
	if *flagQuiet {
		log.SetLevel(log.WarnLevel)
	}
	if *flagPretty {
		log.SetFormatter(&log.TextFormatter{})
	}

	cfg, err := loadConfig(*flagConfig, components)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return err
	}
	log.WithField("c", cfg.String()).Debug("configuration")

	return Main(cfg, fs.Arg(0), fs.Arg(1))
}

func loadConfig(path string, components Components) (*Config, error) {
	if path == "" {
		return NewConfig(components)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config: %v", err)
	}
	defer f.Close()

	return NewConfigFromToml(f, components)
}

var programUsageTemplate = template.Must(template.New("Program usage").Parse(`
monthlog version: {{ .Build }}

Usage: {{ .ExecName }} [options] INPUT OUTPUT

INPUT is the log file to read: a local path, '-' for stdin, a s3:// or
http(s):// URL. Gzip, zstd and lz4 compressed inputs are supported.
OUTPUT is the path of the report to write.

Options:
{{ .Defaults }}
Available inputs:
{{ range .Components.Inputs }}
  * {{ .Name }}{{ end }}

Available outputs:
{{ range .Components.Outputs }}
  * {{ .Name }}{{ end }}

Available uploads:
{{ range .Components.Uploads }}
  * {{ .Name }}{{ end }}

Available metrics:
{{ range .Components.Metrics }}
  * {{ .Name }}{{ end }}

`))

func displayProgramUsage(fs *flag.FlagSet, w io.Writer, components Components) func() {
	return func() {
		type programUsage struct {
			Build      string
			ExecName   string
			Defaults   string
			Components Components
		}

		// Capture command argument defaults
		var defaults strings.Builder
		fs.SetOutput(&defaults)
		fs.PrintDefaults()
		fs.SetOutput(w)

		if err := programUsageTemplate.Execute(w, &programUsage{
			Build:      BuildVersion,
			ExecName:   fs.Name(),
			Defaults:   defaults.String(),
			Components: components,
		}); err != nil {
			panic(err)
		}
	}
}
