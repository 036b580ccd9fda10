package context

import (
	"context"

	"github.com/foodforall/marketplace/constant"
)

func GetAccountID(ctx context.Context) (uint64, bool) {
	v := ctx.Value(constant.AccountIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func GetAccountEmail(ctx context.Context) (string, bool) {
	v := ctx.Value(constant.AccountEmailKey)
	if v == nil {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func GetAccountRole(ctx context.Context) (constant.AccountRole, bool) {
	v := ctx.Value(constant.AccountRoleKey)
	if v == nil {
		return "", false
	}
	role, ok := v.(constant.AccountRole)
	return role, ok
}
