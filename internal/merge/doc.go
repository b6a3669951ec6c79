// Package merge reconciles families of command sets recorded against the
// same original filesystem by independent replicas.
//
// The package offers three operations over a family of canonical sets:
//
//   - CheckRefluent decides whether the family can be reconciled at all,
//     meaning every node's commands agree, chain or converge, and the
//     resolved union is itself canonical.
//   - Greedy produces the single largest merger of a refluent family in
//     one linear pass.
//   - AllMergers lazily enumerates every maximal merger of a family,
//     refluent or not, as a restartable iterator.
//
// Constraints:
//   - All sets in a family must share one algebra.Registry; mixing
//     registries panics, as in package algebra.
//   - Greedy and AllMergers panic on an empty family: there is no
//     registry to build a result against.
//   - Functions here are pure aside from iterator state; logging and
//     persistence belong to the callers.
package merge
