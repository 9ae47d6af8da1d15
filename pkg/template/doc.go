// Package template defines prompt template sources, the immutable Template
// value, and the Loader contract implemented under internal/template/loader.
package template
