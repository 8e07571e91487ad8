// Package provisioning provides the shared machinery for staged deployments.
//
// # Core Types
//
// Context carries the executor, the target hosts, the observer and the metrics
// of one run, plus the per-host states and stage results collected so far.
// Phase defines a provisioning step with Name() and Provision() methods.
// RemoteStep is the Phase that runs one command or upload on every host.
// RunPhases runs phases in order and stops at the first failure.
//
// Every remote step is a barrier: the executor returns only after all hosts
// reported, so no host starts step N+1 before every host finished step N.
//
// # Errors
//
// RemoteError carries the kind, intent, host and captured output of a failed
// remote step. The kind sentinels (ErrRemoteCommand, ErrUpload,
// ErrRepositoryInit, ErrAlreadyProvisioned, ErrServiceRestart) match with
// errors.Is. Failures of several hosts in one step are aggregated with
// go-multierror.
package provisioning
