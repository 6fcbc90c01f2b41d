package domain

// Capability records how strongly a request's identity was established.
type Capability int

const (
	// CapabilityIdentityAsserted means the caller named an existing
	// username. No secret was checked.
	CapabilityIdentityAsserted Capability = iota + 1

	// CapabilityPasswordVerified means the caller proved knowledge of the
	// current password within this request.
	CapabilityPasswordVerified
)

func (c Capability) String() string {
	switch c {
	case CapabilityIdentityAsserted:
		return "identity_asserted"
	case CapabilityPasswordVerified:
		return "password_verified"
	default:
		return "none"
	}
}

// Identity is what the request pipeline knows about the caller.
type Identity struct {
	Profile    Profile
	Capability Capability
}
