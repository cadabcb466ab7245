package auth

const (
	PermissionAll          = "all"
	PermissionHeladitoOnly = "mi_heladito_only"
)

// Areas a mi_heladito_only user may reach, by first path segment under /api/v1.
var heladitoAreas = map[string]bool{
	"heladito": true,
	"auth":     true,
}

func ValidPermission(permission string) bool {
	return permission == PermissionAll || permission == PermissionHeladitoOnly
}

// Allows reports whether permission grants access to an API area.
func Allows(permission, area string) bool {
	switch permission {
	case PermissionAll:
		return true
	case PermissionHeladitoOnly:
		return heladitoAreas[area]
	default:
		return false
	}
}

// UserContext is the authenticated caller as middleware stores it on the request.
type UserContext struct {
	UserID     string
	Username   string
	Permission string
}
