package modules

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/quiz-auth/internal/application"
	"github.com/oksasatya/quiz-auth/internal/interface/middleware"
	"github.com/oksasatya/quiz-auth/pkg/response"
)

// DebugModule exposes process counters. Only mounted with DEBUG_METRICS_ENABLED.
type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), nil)

	dbg := rg.Group("/debug", rl)
	dbg.GET("/vars", gin.WrapH(expvar.Handler()))
	dbg.GET("/auth", func(c *gin.Context) {
		response.Success(c, http.StatusOK, json.RawMessage(application.Metrics().String()), "auth counters", nil)
	})
}
