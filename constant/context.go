package constant

type contextKey string

const (
	AccountIDKey    contextKey = "account_id"
	AccountEmailKey contextKey = "account_email"
	AccountRoleKey  contextKey = "account_role"
)
