// Package ssh provides an SSH client for running provisioning commands on
// cluster nodes.
//
// A [Client] holds one connection per host for the lifetime of a deployment
// run. Connections are established lazily with exponential backoff, commands
// run in fresh sessions, and directory trees are streamed to the host as a
// tar archive on the session's stdin. Close tears the connection down.
package ssh
