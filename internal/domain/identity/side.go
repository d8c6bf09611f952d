package identity

// Side identifies which side of a trade a party acts on. Account managers
// carry a Side as their role; end-user clients carry one as their client type.
type Side string

const (
	SideBuyer    Side = "buyer"
	SideSupplier Side = "supplier"
)

// IsValid checks if the side is a known value
func (s Side) IsValid() bool {
	return s == SideBuyer || s == SideSupplier
}

// Opposite returns the counterpart side
func (s Side) Opposite() Side {
	if s == SideBuyer {
		return SideSupplier
	}
	return SideBuyer
}

// String returns the string representation of Side
func (s Side) String() string {
	return string(s)
}
