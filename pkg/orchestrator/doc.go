// Package orchestrator composes prompts out of templates: it loads each
// template (optionally through a cache), renders named slots first, and feeds
// their output to the enclosing template through the selected engine.
package orchestrator
