package users

// RoleType represents a marketplace role. Every account has exactly one role,
// and the role determines which portal subtree the user may access.
type RoleType string

const (
	RoleFarmer   RoleType = "farmer"   // Sells produce, rents out equipment
	RoleSupplier RoleType = "supplier" // Sells agricultural inputs and equipment
	RoleConsumer RoleType = "consumer" // Buys produce from farmers
)

// Route entry points per role. Unknown roles fall back to the public landing page.
const (
	LandingPath  = "/"
	LoginPath    = "/login"
	FarmerHome   = "/farmer"
	SupplierHome = "/supplier"
	ConsumerHome = "/consumer"
)

// User is the account profile as returned by the backend. The client never
// constructs one locally; it only decodes what login, registration, or a
// profile fetch returned.
type User struct {
	ID       string   `json:"id,omitempty"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Role     RoleType `json:"role,omitempty"`
}

// Valid reports whether the role is one of the three marketplace roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleFarmer, RoleSupplier, RoleConsumer:
		return true
	}
	return false
}

// HomePath returns the role's dashboard entry point, or the public landing
// page for unrecognized roles.
func (r RoleType) HomePath() string {
	switch r {
	case RoleFarmer:
		return FarmerHome
	case RoleSupplier:
		return SupplierHome
	case RoleConsumer:
		return ConsumerHome
	default:
		return LandingPath
	}
}
