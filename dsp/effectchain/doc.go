// Package effectchain organizes effect processors into per-track insert
// chains.
//
// A Catalog maps effect type names to processor factories. The Registry
// owns every plugin instance of a session and the chains that reference
// them by ID, so one processor can be addressed independently of the chain
// it sits in. Chains run enabled plugins strictly in list order.
package effectchain
