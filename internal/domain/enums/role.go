package enums

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClinic Role = "clinic"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClinic:
		return true
	default:
		return false
	}
}
