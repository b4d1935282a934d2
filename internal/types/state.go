package types

// Enum values for Stake State
type StakeState string

const (
	StakeStateUninitialized StakeState = "UNINITIALIZED"
	StakeStateActive        StakeState = "ACTIVE"
	StakeStateClosed        StakeState = "CLOSED"
)

func (s StakeState) String() string {
	return string(s)
}

// StakeStateFromActive maps the persisted active flag to a lifecycle state.
func StakeStateFromActive(active bool) StakeState {
	if active {
		return StakeStateActive
	}
	return StakeStateClosed
}
