// Package textnorm provides stateless string transforms used to clean raw text
// before it is counted into a vocabulary or encoded into a feature vector.
//
// Every function is pure and safe for concurrent use. Normalizers compose in
// any order; Pipeline applies a named sequence of them.
package textnorm
