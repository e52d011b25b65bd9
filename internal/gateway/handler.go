package gateway

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gehenna/gehenna/pkg/logger"
	"github.com/gehenna/gehenna/pkg/metrics"
	"github.com/gehenna/gehenna/pkg/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NameFetcher is satisfied by *Client and by test fakes.
type NameFetcher interface {
	FetchNames(ctx context.Context) ([]string, error)
}

// RegisterGatewayRoutes installs the page templates and the gateway routes.
// The index page never fails because of the registry: on any upstream error it
// renders an empty list.
func RegisterGatewayRoutes(r *gin.Engine, fetcher NameFetcher) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", func(c *gin.Context) {
		list, err := fetcher.FetchNames(c.Request.Context())
		if err != nil {
			metrics.UpstreamFailures.Inc()
			logger.Log(logger.LevelWarn).
				Str("request_id", middleware.GetRequestID(c)).
				Err(err).
				Msg("registry unavailable, rendering empty list")
			list = []string{}
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"names": list, "count": len(list)})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
