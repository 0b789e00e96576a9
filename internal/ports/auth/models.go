package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	TenantID string

	// IsStaff habilita la gestión de especies/recintos y actuar sobre
	// animales de otros dueños. El core no decide roles: lo recibe acá.
	IsStaff bool
}
