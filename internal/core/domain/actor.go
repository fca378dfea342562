package domain

// Role is a staff role carried in the bearer token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleEDEC  Role = "edec"
)

// Actor identifies who is performing an operation.
type Actor struct {
	UserID    string
	Role      Role
	IPAddress string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor is used for changes that originate from the payment gateway.
func SystemActor(ip string) Actor {
	return Actor{UserID: SystemUserID, IPAddress: ip}
}
