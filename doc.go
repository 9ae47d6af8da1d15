// Package promptkit renders prompt templates: plain text with {dotted.path}
// placeholders resolved against a nested context. The root package exposes
// convenience constructors; the building blocks live under pkg/.
package promptkit
