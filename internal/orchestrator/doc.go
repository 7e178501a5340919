// Package orchestrator deploys a batch of components in plan order.
//
// A run resolves the plan, then walks it. For every component the
// configuration template is resolved against the handles already recorded
// in the run's registry, the injected DeployFunc is called, and the
// returned handle is recorded so dependents can use it. The first failure
// stops the run; the returned Report lists exactly what succeeded before it.
//
// Deployment is strictly sequential unless WithWorkers allows independent
// components of one plan level to be deployed side by side. Even then a
// component only starts after every dependency has a recorded handle, and a
// failure prevents any further component from starting while letting the
// ones already in flight finish.
package orchestrator
