// Package orchestration drives role deployments against groups of hosts.
//
// # Workflow
//
// Orchestrator.Deploy runs, for one role and host list:
//  1. Preflight - local checks only (templates sentinel, host count)
//  2. Common setup - package index refresh, upgrade, keyrings, general tools
//  3. Role pipeline - admin bootstrap, or the node pipeline for proxy,
//     storage, generic and saio
//
// Each step is a barrier across every host. The first failure stops the run;
// nothing is retried or rolled back. Re-running a node role is safe, while the
// admin bootstrap refuses to run against an existing repository.
//
// # Usage
//
//	orch := orchestration.New(settings, baseDir, executor)
//	outcome, err := orch.Deploy(ctx, orchestration.Proxy, hosts)
//	if !outcome.OK {
//	    return err
//	}
package orchestration
