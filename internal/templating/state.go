package templating

// RepositoryState tracks the admin repository lifecycle as seen from the
// control node.
type RepositoryState int

const (
	// Uninitialized means the templates have not been rendered.
	Uninitialized RepositoryState = iota
	// Templated means the sentinel exists and the tree can be published.
	Templated
	// Bootstrapped means the tree was committed on the admin host.
	Bootstrapped
)

func (s RepositoryState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Templated:
		return "templated"
	case Bootstrapped:
		return "bootstrapped"
	default:
		return "unknown"
	}
}

// Status reports the local state of the template tree under baseDir.
// Bootstrapped can only be observed on the admin host and is never returned.
func Status(baseDir string) (RepositoryState, error) {
	ok, err := Initialized(baseDir)
	if err != nil {
		return Uninitialized, err
	}
	if ok {
		return Templated, nil
	}
	return Uninitialized, nil
}
