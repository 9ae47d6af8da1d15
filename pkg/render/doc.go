// Package render implements the brace placeholder engine used for prompt
// templates.
//
// A placeholder is an opening brace, one or more identifier segments
// ([A-Za-z0-9_]+) joined by dots, and a closing brace:
//
//	Hello {user.name}, today is {meta.date}.
//
// Each path is resolved against the render context with package resolve and
// replaced by the string form of the value. Text that does not match the
// pattern, such as {1+1} or a lone brace, passes through untouched. A path
// that cannot be resolved fails the whole render with a *ResolutionError.
package render
