// Package edn implements EDN, an extensible data notation written in
// Cirru syntax.
//
// EDN is designed to be:
//   - Richly typed (tags, symbols, tuples, records, buffers, atoms)
//   - Indentation-based and readable (Cirru text, no bracket noise)
//   - Deterministic (canonical ordering for sets, maps and records)
//   - Comparable and hashable (a total order across all variants)
//   - Bridgeable (Go structs, JSON and CBOR round-trips)
//
// # Data Model
//
// Scalars: nil, bool, number, symbol, tag, string
// Containers: list, set, map, record (tagged pairs), buffer (bytes)
// Special: quote (raw syntax), tuple (tagged variant), atom, any-ref
//
// # Syntax
//
// List:    [] 1 2 3
// Set:     #{} 1 2
// Map:     {} (:a 1) (:b 2)
// Record:  %{} :Demo (:a 1) (:b 2)
// Tuple:   :: :point 1 2
// Buffer:  buf 0a 1f
// Quote:   quote $ + 1 2
// Atom:    atom 1
// String:  |plain or "|has space"
// Tag:     :name    Symbol: 'name
//
// A document holds exactly one top-level expression; a bare scalar is
// written wrapped as `do nil`. Lists starting with `;` are comments and
// are skipped everywhere.
//
// Parse and Format recurse once per nesting level and carry no depth
// guard, so a pathologically deep document can exhaust the goroutine
// stack. Callers taking untrusted input should bound its size first.
//
// # Example
//
//	value, err := edn.Parse(`
//	{} (:name |Cirru)
//	  :users $ [] 1 2 3
//	`)
//	if err != nil { ... }
//	text, err := edn.Format(value, true)
//
// # Bridges
//
// ToValue and FromValue convert Go structs and collections; struct
// fields become tag keys, map keys stay strings. Value also implements
// json.Marshaler/Unmarshaler and the CBOR equivalents through a shared
// sentinel encoding, so the same data moves over either wire format.
package edn
