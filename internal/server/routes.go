package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uGboly/xrblocks/internal/session"
)

func (d *Debug) registerRoutes() {
	d.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(d.started).String(),
			"app":    d.app,
		})
	})

	d.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	d.router.GET("/status", func(c *gin.Context) {
		status := d.core.Status()
		c.JSON(http.StatusOK, gin.H{
			"frames":               status.Frames,
			"physics_steps":        status.PhysicsSteps,
			"timestep":             status.Timestep.String(),
			"session_state":        status.SessionState,
			"scripts_total":        status.ScriptsTotal,
			"scripts_ready":        status.ScriptsReady,
			"scripts_initializing": status.ScriptsInit,
			"scripts_failed":       status.ScriptsFailed,
		})
	})

	d.router.POST("/session/start", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		if err := d.core.StartSession(ctx); err != nil {
			c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_state": d.core.Session().State().String()})
	})

	d.router.POST("/session/end", func(c *gin.Context) {
		if err := d.core.EndSession(); err != nil {
			c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_state": d.core.Session().State().String()})
	})
}

func sessionErrorStatus(err error) int {
	if errors.Is(err, session.ErrInvalidState) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
