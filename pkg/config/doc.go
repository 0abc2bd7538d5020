// Package config provides configuration loading, validation, and access
// for Atlas.
//
// Configuration is loaded from a YAML file, with defaults applied for
// any unset field and environment variable overrides applied on top
// (ATLAS_SECTION_FIELD naming). Validation collects every failure into
// a single ValidationError rather than stopping at the first.
//
// Typical usage:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A process-wide singleton is available via Initialize/GetConfig for
// code paths where injection is impractical; tests should prefer
// explicit Config values.
package config
