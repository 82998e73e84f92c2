package stepwise

import "time"

// Default configuration for ledger collaborators.
// These can be overridden per instance through constructor arguments.
var (
	// DefaultArchiveBuffer is the number of entries an Archiver queues
	// before it starts dropping. Submissions never wait on the archive.
	DefaultArchiveBuffer = 256

	// DefaultArchiveTimeout bounds a single archive write.
	DefaultArchiveTimeout = 5 * time.Second
)
