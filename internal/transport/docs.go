package transport

import (
	"net/http"

	// registers the generated OpenAPI document with swag
	_ "go-audio-emotion/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	DocsPath  = "/docs"
	RedocPath = "/redoc"

	// swagger document served by gin-swagger under DocsPath
	openAPIPath = DocsPath + "/doc.json"
)

var redocPage = []byte(`<!DOCTYPE html>
<html>
  <head>
    <title>Audio Emotion Detection API</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
  </head>
  <body>
    <redoc spec-url="` + openAPIPath + `"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>
`)

// registerDocs mounts Swagger UI on DocsPath and ReDoc on RedocPath
func registerDocs(r *gin.Engine) {
	r.GET(DocsPath, func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, DocsPath+"/index.html")
	})
	r.GET(DocsPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DocExpansion("none"),
	))
	r.GET(RedocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", redocPage)
	})
}
