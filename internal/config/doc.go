// Package config loads the sectioned key/value configuration that drives
// template rendering and node deployment.
//
// The file format is INI. A "common" section is shared: [LoadSection] returns
// the common pairs overlaid by the named section's own pairs. [Load] returns
// every section, and [Config.Flatten] collapses them into a single lookup table
// for template placeholders.
//
// Deployment-specific values (SSH identity, package sets, repository
// location) are extracted into typed [DeploySettings] so the orchestrator
// never reads raw keys. SSH timeouts come from the environment, see
// [LoadTimeouts].
package config
