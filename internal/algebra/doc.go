// Package algebra implements the command algebra at the heart of the
// reconciler: path identities, value and command types, sequences and
// sets of commands, and the canonicalization and ordering algorithms
// that turn recorded filesystem changes into a canonical form.
//
// This package is the foundational layer. All other internal packages
// import algebra; algebra imports nothing internal.
//
// Key design constraints:
//   - All operations are pure: they take immutable snapshots and return
//     new values, never mutate shared input.
//   - Every Node is minted by exactly one Registry; mixing Nodes from
//     different Registries is a programming error and panics.
//   - No wall-clock time, no I/O, no global state.
package algebra
