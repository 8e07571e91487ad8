package handlers

import (
	"fmt"

	"github.com/imamik/swiftsetup/internal/hosts"
)

// Hosts prints the hosts of group, or every group name when group is empty.
func Hosts(opts *Options, group string) error {
	if group == "" {
		groups, err := hosts.Groups(opts.baseDir())
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Fprintln(stdout, g)
		}
		return nil
	}

	list, err := hosts.Resolve(opts.baseDir(), group)
	if err != nil {
		return err
	}
	for _, h := range list {
		fmt.Fprintln(stdout, h)
	}
	return nil
}
