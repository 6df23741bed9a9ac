// Package config defines the format-agnostic configuration model for the
// planner: raw per-layer task definitions, the resolved (merged) task
// definition, and the Loader interface for reading workspace configuration
// from a concrete format.
//
// The `config.Model` is the single source of truth for the `dag` and
// `planner` packages. Concrete loader implementations, such as for HCL, are
// provided in separate packages.
package config
