package models

// GenerateConfig contains the options of one generate run as given on the
// command line. Empty strings mean "not given".
type GenerateConfig struct {
	// Package is the workspace member directory.
	Package   string
	Output    string
	Arch      string
	Target    string
	TargetDir string
	Profile   string

	AutoReq         string
	PayloadCompress string
	SourceDate      string

	DryRun bool
}
