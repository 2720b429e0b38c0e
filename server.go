package voicechat

import (
	"log"
	"net/http"
	"strings"

	"github.com/Desarso/voicechat/models"
	"github.com/Desarso/voicechat/sessions"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Any origin may connect, matching the HTTP CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the gin engine serving the relay.
func NewRouter(handler sessions.VoiceChatHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(RequestID())
	router.Use(cors.New(CORSConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
	})

	router.POST("/voice-chat", func(c *gin.Context) {
		session := sessions.NewHTTPSession(c.GetString(requestIDKey), handler)
		session.ServeVoiceChat(c)
	})

	router.GET("/ws/voice-chat", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		session := sessions.NewVoiceSession(c.GetString(requestIDKey), conn, handler)
		if err := session.Run(c.Request.Context()); err != nil {
			log.Printf("WebSocket session %s ended with error: %v", session.SessionID, err)
		}
	})

	return router
}

// CORSConfig allows every origin, method and header.
func CORSConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions}
	cfg.AllowHeaders = []string{"*"}
	cfg.ExposeHeaders = []string{models.RequestIDHeader}
	return cfg
}

const requestIDKey = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a fresh UUID, echoes
// it on the response and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(models.RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(models.RequestIDHeader, id)
		c.Request = c.Request.WithContext(models.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
