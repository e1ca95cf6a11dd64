package cloud

import "time"

type Object struct {
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
	// LastModified is nil when the listing entry carries no timestamp.
	LastModified *time.Time `json:"last_modified"`
}

type Listing struct {
	Objects []Object
	// Truncated is set when more objects exist beyond what was listed.
	Truncated bool
}
