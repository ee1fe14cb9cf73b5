package main

import "github.com/kelseyhightower/envconfig"

// envConfig holds environment-level defaults that are awkward to pass as
// flags on every invocation. Flags, when given, always win over these.
//
// SQLiteDriver and MergeBufferSamples were dropped from an earlier draft
// of this struct: the driver is a build-tag decision (cgo vs not, see
// csiindex_cgo.go/csiindex_nogo.go), not something swappable at runtime
// against a single compiled binary, and nothing in this tree buffers
// merge output by sample count rather than by record. See DESIGN.md.
type envConfig struct {
	MaxGroups int `envconfig:"MAX_GROUPS" default:"8"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := envconfig.Process("GTQ", &cfg); err != nil {
		return envConfig{}, err
	}
	return cfg, nil
}
