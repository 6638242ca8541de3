// Package output provides the components writing the report.
package output

import "github.com/monthlog/monthlog"

// All is the list of all outputs.
var All = []monthlog.OutputDesc{
	TextDesc,
	SQLiteDesc,
}
