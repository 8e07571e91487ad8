package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/swiftsetup/internal/hosts"
	"github.com/imamik/swiftsetup/internal/templating"
	"github.com/imamik/swiftsetup/internal/ui/tui"
)

// Status prints the template state and the size of every host group.
func Status(opts *Options) error {
	state, err := templating.Status(opts.baseDir())
	if err != nil {
		return err
	}

	groups, err := hosts.Groups(opts.baseDir())
	if err != nil && !errors.Is(err, hosts.ErrHostListMissing) {
		return err
	}
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		list, err := hosts.Resolve(opts.baseDir(), g)
		switch {
		case errors.Is(err, hosts.ErrHostListEmpty):
			counts[g] = 0
		case err != nil:
			return err
		default:
			counts[g] = len(list)
		}
	}

	fmt.Fprint(stdout, tui.RenderStatus(state.String(), counts))
	return nil
}
