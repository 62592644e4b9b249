package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "__request_id"
)

// RequestID tags every request with an id, reusing an inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if c == nil {
		return "-"
	}
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}
	return "-"
}

// 会话中的一次性提示消息
func addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		klog.Warningf("[%s] save flash: %v", requestID(c), err)
	}
}

func popFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		klog.Warningf("[%s] clear flashes: %v", requestID(c), err)
	}

	messages := make([]string, 0, len(raw))
	for _, item := range raw {
		if msg, ok := item.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
