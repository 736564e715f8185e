package core

import "io"

// FileStorage is any service that can store uploaded files (teacher photos)
// and hand back a reference the API stores on the record. The actual host
// (local disk, cloud bucket) is an infrastructure concern.
type FileStorage interface {
	// Save persists the content of r under a name derived from filename
	// and returns the public reference to it.
	Save(filename string, r io.Reader) (string, error)
}
