package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/redisclient"
	"go.mongodb.org/mongo-driver/mongo"
)

// Health godoc
// @Summary Service health
// @Description Reports the API and its backing services
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /v1/health [get]
func Health(db *mongo.Database, redis *redisclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		services := map[string]string{}

		if db != nil {
			if err := db.Client().Ping(ctx, nil); err != nil {
				services["mongodb"] = "unreachable"
				status = "degraded"
			} else {
				services["mongodb"] = "ok"
			}
		}
		if redis != nil {
			if err := redis.Ping(ctx).Err(); err != nil {
				services["redis"] = "unreachable"
				status = "degraded"
			} else {
				services["redis"] = "ok"
			}
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Services:  services,
		})
	}
}
