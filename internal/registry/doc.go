// Package registry provides the central "glue" of the factory system.
//
// The Registry owns the process-wide name tables: factories (under their
// canonical names and aliases), globally defined traits, class-identifier
// constructors, and named sequences. It is always injected — any operation
// needing cross-factory lookup receives the registry explicitly instead of
// reaching for an ambient global.
//
// Its lifecycle has two phases. During the definition phase a single actor
// registers definitions; duplicate names are rejected immediately. Finish
// ends the phase: the registry becomes effectively read-only and late
// registration fails, which is what makes the subsequent build phase safe
// to use from many goroutines.
package registry
