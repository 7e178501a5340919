// Package registry holds the handles resolved during one deployment run.
//
// Each name may be recorded once. The registry starts empty (or seeded with
// handles from an earlier run) and only ever grows; it performs no
// deployment itself.
package registry
