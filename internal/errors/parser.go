package errors

import (
	"errors"
	"strings"

	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// ErrorInfo pairs an error code with its user-facing message
type ErrorInfo struct {
	Code    string // code from codes.go, mapped by the client
	Message string // localized human-readable message
}

// ParseStoreError converts a storage layer error into an error code and
// a localized message without leaking internals to the client
func ParseStoreError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "服务器错误"}
	}

	if errors.Is(err, store.ErrNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return parseDuplicateError(dup)
	}

	if errors.Is(err, store.ErrUnknownCollection) || errors.Is(err, store.ErrUnknownIndex) {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "存储配置错误，请联系管理员",
		}
	}

	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    StorageUnavailable,
			Message: "存储服务暂时不可用，请稍后重试",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateError picks the field-specific message for a unique
// index collision
func parseDuplicateError(dup *store.DuplicateError) ErrorInfo {
	switch dup.Field {
	case "phone":
		return ErrorInfo{Code: AuthPhoneExists, Message: "该手机号已注册"}
	case "username":
		return ErrorInfo{Code: AuthUsernameExists, Message: "用户名已存在"}
	case "email":
		return ErrorInfo{Code: AuthEmailExists, Message: "邮箱已注册"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "数据已存在，请勿重复提交"}
}

// getNotFoundMessage returns the not-found message for the context
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "user") || strings.Contains(contextLower, "用户") {
		return "用户不存在"
	}
	if strings.Contains(contextLower, "product") || strings.Contains(contextLower, "商品") {
		return "商品不存在或已下架"
	}
	if strings.Contains(contextLower, "order") || strings.Contains(contextLower, "订单") {
		return "订单不存在"
	}
	if strings.Contains(contextLower, "address") || strings.Contains(contextLower, "地址") {
		return "收货地址不存在"
	}
	if strings.Contains(contextLower, "cart") || strings.Contains(contextLower, "购物车") {
		return "购物车中没有该商品"
	}

	return "请求的数据不存在"
}

// getDefaultErrorMessage returns the fallback message for the operation
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "register") {
		return "创建失败，请稍后重试"
	}
	if strings.Contains(contextLower, "update") {
		return "更新失败，请稍后重试"
	}
	if strings.Contains(contextLower, "delete") {
		return "删除失败，请稍后重试"
	}

	return "服务器开小差了，请稍后重试"
}
