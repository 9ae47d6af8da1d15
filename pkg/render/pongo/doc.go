// Package pongo adapts pongo2 (Django template syntax) to the render.Engine
// contract for prompts that need conditionals or loops.
package pongo
