// Package main is the entry point for the swiftsetup CLI.
//
// swiftsetup bootstraps a Swift object storage cluster. It renders the
// cluster configuration templates on the control node, publishes them as a
// git repository on the admin host, and provisions proxy, storage, generic
// and all-in-one nodes over SSH.
//
// Commands: template, deploy, hosts, status, version.
//
// For detailed usage information, run:
//
//	swiftsetup --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
