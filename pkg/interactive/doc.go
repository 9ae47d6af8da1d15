// Package interactive completes a render context by prompting on the terminal
// for placeholders the context leaves unresolved.
package interactive
