// Package catalog holds the static reference lists the form renders: the
// ordered animal catalog offered as checkboxes and the shirt sizes offered in
// the size select.
//
// A Catalog is immutable once built. Default returns the embedded catalog;
// Load and LoadFile read the same YAML shape from elsewhere:
//
//	animals:
//	  - id: "1"
//	    name: dog
//	sizes:
//	  - code: S
//	    label: Small
//
// Display names read from files are stripped of markup before use.
package catalog
