package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParsePage 读取 page/limit 查询参数，非法值回退到默认值
func ParsePage(ctx *gin.Context) (page, limit int) {
	page = cast.ToInt(ctx.DefaultQuery("page", "1"))
	limit = cast.ToInt(ctx.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// QueryFloat 读取浮点查询参数，缺省或非法时返回 def
func QueryFloat(ctx *gin.Context, key string, def float64) float64 {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return def
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return def
	}
	return v
}

func QueryBool(ctx *gin.Context, key string, def bool) bool {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return def
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return def
	}
	return v
}
