// Package harvest provides a cost-optimized pipeline for extracting
// structured data from web pages. Cheap deterministic strategies (CSS
// selectors, regular expressions) run first; a language model is consulted
// only for fields the cheap strategies could not resolve with sufficient
// confidence, and only for those fields.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, anthropic/, rod/).
package harvest
