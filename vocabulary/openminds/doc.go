// Package openminds provides vocabulary predicates for knowledge-graph
// records described with the openMINDS metadata model.
//
// Records arrive as semstreams triples. Versions carry VersionIdentifier,
// IsAlternativeVersionOf and IsNewVersionOf; parcellation entities carry
// HasParent and AppearsIn; specimens carry IsPartOf and the attribute
// predicates. The graph package decodes these into translator input.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semindex/vocabulary/openminds"
package openminds
