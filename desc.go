package monthlog

// Components holds the descriptions of all components one can use to
// produce a report.
type Components struct {
	Inputs  []InputDesc  // list of available inputs
	Outputs []OutputDesc // list of available outputs
	Uploads []UploadDesc // list of available uploads

	Metrics []MetricsDesc // list of available metrics clients
}

// ComponentParams holds the common configuration parameters passed to
// components of all kinds.
type ComponentParams struct {
	DecodedConfig interface{}   // decoded component-specific struct (from configuration file)
	Metrics       MetricsClient // metrics backend, never nil
	RunID         string        // unique identifier of the current run
}

// InputParams holds the parameters passed to Input constructor.
type InputParams struct {
	ComponentParams
}

// OutputParams holds the parameters passed to Output constructor.
type OutputParams struct {
	ComponentParams
}

// UploadParams is the struct passed to the Upload constructor.
type UploadParams struct {
	ComponentParams
}

// InputDesc describes an Input component.
//
// It has a name, a config object, a constructor function (New)
// and a help string.
type InputDesc struct {
	Name   string
	New    func(InputParams) (Input, error)
	Config interface{}
	Help   string
}

// OutputDesc describes an Output component.
type OutputDesc struct {
	Name   string
	New    func(OutputParams) (Output, error)
	Config interface{}
	Help   string
}

// UploadDesc describes an Upload component.
type UploadDesc struct {
	Name   string
	New    func(UploadParams) (Upload, error)
	Config interface{}
	Help   string
}

// MetricsDesc describes a metrics client.
type MetricsDesc struct {
	Name   string                                   // Name of the metrics client
	Config interface{}                              // Config is the metrics client specific configuration
	New    func(interface{}) (MetricsClient, error) // Constructor
	Help   string
}
