package monthlog

import "io"

// InputStats holds the statistics of an input.
type InputStats struct {
	NumReadBytes int64             // bytes read from the source, before decompression
	CustomStats  map[string]string // component specific, free form
}

// OutputStats holds the statistics of an output.
type OutputStats struct {
	NumWrittenBytes int64
	NumRecords      int64 // records listed in the written report
	CustomStats     map[string]string
}

// UploadStats holds the statistics of an upload.
type UploadStats struct {
	NumProcessedFiles int64
	NumErrorFiles     int64
	NumAttempts       int64
}

// Input is the component the records are read from.
type Input interface {
	// Open opens the named source and returns a stream over its
	// decompressed content. The caller must close it.
	Open(name string) (io.ReadCloser, error)

	// Stats returns stats about the input.
	Stats() InputStats
}

// Output is the component the report is written to.
//
// An output is used once: Open, then Write, then Close. Close must be
// called even if Open or Write failed.
type Output interface {
	// Open creates the named destination.
	Open(name string) error

	// Write writes rep to the destination.
	Write(rep *Report) error

	// Close flushes and releases the destination. It returns the path of a
	// local file to hand over to the upload component, if any.
	Close() (string, error)

	// Stats returns stats about the output.
	Stats() OutputStats
}

// Upload is the component shipping the output file to a remote location,
// once it has been closed.
type Upload interface {
	// Upload uploads the local file at path.
	Upload(path string) error

	// Stats returns stats about the upload process.
	Stats() UploadStats
}
