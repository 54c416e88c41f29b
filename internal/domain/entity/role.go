package entity

// Role names carried in access tokens
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleDoctor       = "doctor"
	RolePatient      = "patient"
)

// ConsoleRoles lists the roles allowed to open the appointment calendar
func ConsoleRoles() []string {
	return []string{RoleAdmin, RoleReceptionist, RoleDoctor, RolePatient}
}
