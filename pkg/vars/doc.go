// Package vars builds render contexts: it decodes JSON, YAML, TOML, and HCL
// context documents into nested maps, deep-merges them, and applies dotted
// "path=value" assignments.
package vars
