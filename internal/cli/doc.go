// Package cli holds the pieces shared by the serialbox command line
// tools: axis bounds, store path resolution, field comparison and the
// text rendering of field data.
package cli
