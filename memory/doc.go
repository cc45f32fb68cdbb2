// Package memory provides bounded conversation memory.
//
// Persistence model:
//   - Only text messages are stored (role + text). Tool blocks stay inside a single
//     exchange and are never remembered.
//   - A Repository stores whole conversations; Window bounds what is kept.
package memory
