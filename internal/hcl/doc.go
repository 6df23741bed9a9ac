// Package hcl implements the config.Loader interface for HCL workspace
// configuration. It parses the root monoplan.hcl plus one optional
// monoplan.hcl per member package, and translates the decoded schema
// structs into the format-agnostic config.Model.
package hcl
