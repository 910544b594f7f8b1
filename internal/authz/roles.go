package authz

const (
	RoleWorker     = 10
	RoleAgronomist = 20
	RoleAccountant = 30
	RoleOwner      = 40
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleAgronomist || roleID == RoleOwner || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAccountant
}
