package provisioning

// RunState is the progress of a role deployment, for the run as a whole or
// for one host.
type RunState int

const (
	// NotStarted means no stage completed yet.
	NotStarted RunState = iota
	// CommonProvisioned means the common setup completed.
	CommonProvisioned
	// RoleProvisioned means the role pipeline completed. Terminal.
	RoleProvisioned
	// Failed means a stage reported a failure. Terminal.
	Failed
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case CommonProvisioned:
		return "CommonProvisioned"
	case RoleProvisioned:
		return "RoleProvisioned"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == RoleProvisioned || s == Failed
}
