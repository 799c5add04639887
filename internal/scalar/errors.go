package scalar

import "errors"

var (
	// ErrParameterNotFound indicates the swept transmit power could not be
	// inferred from the artifact name or path. The artifact should be
	// skipped, not aggregated.
	ErrParameterNotFound = errors.New("transmit power not found in artifact name")

	// ErrArtifactUnreadable indicates the scalar file could not be opened or
	// read. The caller should skip the artifact rather than abort the batch.
	ErrArtifactUnreadable = errors.New("scalar artifact unreadable")
)
