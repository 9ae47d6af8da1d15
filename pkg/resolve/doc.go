// Package resolve walks dotted paths such as "config.name" through a context
// graph. Each node is classified as a mapping (key lookup) or a struct (field
// access); anything else stops the walk with an *Error naming the path.
package resolve
