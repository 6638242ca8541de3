// Package input provides the components reading the log file a report is
// built from.
package input

import "github.com/monthlog/monthlog"

// All is the list of all inputs.
var All = []monthlog.InputDesc{
	SourceDesc,
}
