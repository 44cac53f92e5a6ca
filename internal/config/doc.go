// Package config defines the format-agnostic model of a monitor's
// configuration and the Loader interface that format-specific packages
// (such as internal/hcl) implement.
package config
