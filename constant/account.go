package constant

type AccountRole string

const (
	RoleRestaurant AccountRole = "restaurant"
	RoleUser       AccountRole = "user"
)
