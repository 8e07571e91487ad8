// Package testing provides test utilities, builders, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ProjectBuilder: Fluent builder for an on-disk base dir (config, hosts, templates)
//   - MockExecutor: Recording remote.Executor with per-host result hooks
//   - FullConfig: A configuration carrying every key a deployment reads
//
// Usage:
//
//	dir := testing.NewProjectBuilder().
//	    WithHosts("proxy", "p1", "p2").
//	    WithSentinel().
//	    Build(t)
//
//	exec := testing.NewMockExecutor()
//	exec.FailWhen("restart OS services", "p2")
package testing
