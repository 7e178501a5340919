// Package resolver turns a batch of component descriptors into a
// deterministic deployment plan.
//
// Resolution is a pure function of its input. Every descriptor is validated
// first (unique names, known dependencies), then ordered with Kahn's
// algorithm. When several components are ready at the same time the one
// with the lexically smallest name goes first, so the same input always
// yields the same plan.
package resolver
