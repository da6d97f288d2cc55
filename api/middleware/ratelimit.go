package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/utils"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (c *clientLimiter) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *clientLimiter) idleSince() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen)
}

// IPRateLimiter 按客户端 IP 的令牌桶限流
type IPRateLimiter struct {
	rps        float64       // 每秒请求数
	burst      int           // 令牌桶的容量
	expireTime time.Duration // 过期时间
	limiterMap *sync.Map
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewIPRateLimiter Create new IP-based rate limits
func NewIPRateLimiter(rps float64, burst int, expireTime time.Duration) *IPRateLimiter {
	if expireTime <= 0 {
		expireTime = 10 * time.Minute
	}
	limiter := &IPRateLimiter{
		rps:        rps,
		burst:      burst,
		expireTime: expireTime,
		limiterMap: &sync.Map{},
		stopChan:   make(chan struct{}),
	}

	utils.SafeGo(limiter.cleanupStaleClients)

	return limiter
}

// Middleware Return a Gin middleware handler
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			common.RespondErrorAbort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// Allow 消耗 key 对应令牌桶中的一个令牌
func (rl *IPRateLimiter) Allow(key string) bool {
	val, ok := rl.limiterMap.Load(key)
	if !ok {
		// rps <= 0 表示不限流
		limit := rate.Limit(rl.rps)
		if rl.rps <= 0 {
			limit = rate.Inf
		}
		val, _ = rl.limiterMap.LoadOrStore(key, &clientLimiter{
			limiter:  rate.NewLimiter(limit, rl.burst),
			lastSeen: time.Now(),
		})
	}

	client := val.(*clientLimiter)
	client.touch()
	return client.limiter.Allow()
}

func (rl *IPRateLimiter) StopCleanup() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *IPRateLimiter) cleanupStaleClients() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.limiterMap.Range(func(key, value interface{}) bool {
				if value.(*clientLimiter).idleSince() > rl.expireTime {
					rl.limiterMap.Delete(key)
				}
				return true
			})
		case <-rl.stopChan:
			return
		}
	}
}
