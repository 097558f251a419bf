package router

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcarrot/defectdash/internal/http/handler"
	"github.com/techcarrot/defectdash/web"
)

func SetupRoutes(router *gin.Engine, snapshots handler.SnapshotProvider, refresher handler.Refresher) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	dash := handler.NewDashboardHandler(snapshots, refresher)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/snapshot", dash.Snapshot)
		v1.GET("/issues", dash.Issues)
		v1.POST("/refresh", dash.Refresh)
	}

	router.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.html")))
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		// Same intolerance as template.Must: a bad embed path is a
		// build defect, not a runtime condition.
		panic(err)
	}
	router.StaticFS("/static", http.FS(staticFS))
	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "dashboard.html", nil)
	})
}
