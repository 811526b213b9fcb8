package engine

import (
	"time"

	"erpmail/backend/internal/cache"
)

// 编译结果缓存。模板表达式数量有限且反复求值，
// 缓存编译产物避免每条记录都重新解析。
var compileCache = cache.NewLocalCache(10 * time.Minute)

func cacheKey(engine, expression string) string {
	return engine + "\x00" + expression
}
