// Package remote runs provisioning operations against groups of hosts.
//
// A [Session] carries the execution context every remote call needs (SSH
// identity, port, parallelism, timeouts). It is built once per run and handed
// to [NewSSHExecutor]; nothing is read from process-wide state.
//
// Every [Executor] call is a barrier: it fans the operation out across the
// hosts with a bounded worker pool and returns only after each host reported,
// one [Result] per host in input order.
package remote
