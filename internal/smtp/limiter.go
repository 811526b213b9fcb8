package smtp

import (
	"context"

	"golang.org/x/time/rate"
)

// SendLimiter 出站投递限流器
//
// 约束对中继的每秒投递次数，避免批量触发时压垮中继或触碰
// 对端的速率限制。
type SendLimiter struct {
	limiter *rate.Limiter
}

// NewSendLimiter 创建限流器
//
// 参数:
//   - perSecond: 每秒允许的投递次数，<=0 表示不限流
//   - burst: 突发额度
func NewSendLimiter(perSecond float64, burst int) *SendLimiter {
	if perSecond <= 0 {
		return &SendLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst < 1 {
		burst = 1
	}
	return &SendLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait 阻塞到允许下一次投递，或上下文取消。
func (l *SendLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
