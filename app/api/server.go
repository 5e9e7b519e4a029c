package api

import (
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func NewServer(handler *Handler, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestID())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Keys[requestIDHeader],
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(cors.New(corsConfig(allowedOrigins)))

	setupRoutes(r, handler)

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}

	return config
}

// requestID tags every request with an id, reusing one supplied by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/news", handler.GetNews)
		api.GET("/news.rss", handler.GetNewsRSS)
		api.GET("/article", handler.GetArticle)

		api.GET("/sections", handler.ListSections)
		api.GET("/sections/:name/news", handler.GetSectionNews)

		api.GET("/devices/:device/storage", handler.ListStorageKeys)
		api.GET("/devices/:device/storage/:key", handler.GetStorageValue)
		api.PUT("/devices/:device/storage/:key", handler.PutStorageValue)
		api.DELETE("/devices/:device/storage/:key", handler.DeleteStorageValue)
		api.GET("/devices/:device/preferences", handler.GetPreferences)
		api.PUT("/devices/:device/preferences/categories/:name", handler.SetCategory)

		api.GET("/market/stocks", handler.GetStocks)
		api.GET("/market/indices", handler.GetIndices)
		api.GET("/market/crypto", handler.GetCryptos)
		api.GET("/market/chart/:symbol", handler.GetChart)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "News Desk",
			"version":     handler.version,
			"description": "GNews proxy and per-device storage for the news reader",
			"endpoints": map[string]string{
				"news":     "/api/news?category=&country=&q=&max=",
				"rss":      "/api/news.rss",
				"article":  "/api/article?url=",
				"sections": "/api/sections",
				"storage":  "/api/devices/<device>/storage/<key>",
				"prefs":    "/api/devices/<device>/preferences",
				"market":   "/api/market/{stocks,indices,crypto,chart/<symbol>}",
				"health":   "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
