// Package configs provides embedded configuration templates for folio.
//
// Templates are embedded at build time so that `folio config init` works
// from any installation. Keep the values in sync with config.NewConfig();
// the config tests load the template and compare it with the defaults.
package configs

import _ "embed"

// ProjectConfigTemplate is written to .folio.yaml by `folio config init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
