// Package environment provides the collaborator that resolves template names
// to source locations and hosts the variable store shared across every
// template in a render chain. The store is the only mutable state crossing
// template boundaries; the provided implementations guard it with a mutex,
// but renders themselves remain single-writer by convention.
package environment
