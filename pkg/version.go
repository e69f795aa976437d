package pkg

import "fmt"

var (
	// These variables are here only to show current version. They are set in makefile during build process
	SequencerVersion         = "devel"
	GitRevision              = "devel"
	SequencerVersionRevision = fmt.Sprintf("%s-%s", SequencerVersion, GitRevision)
)
