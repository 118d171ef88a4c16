package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/yi-nology/blender_board/biz/handler"
	"github.com/yi-nology/blender_board/biz/handler/version"
	"github.com/yi-nology/blender_board/biz/middleware"
	"github.com/yi-nology/blender_board/biz/service"
)

// RegisterMediaRoutes configures the image and model APIs. writeLock is
// prepended to every mutating route and may be empty.
func RegisterMediaRoutes(r *server.Hertz, svc *service.Service, writeLock []app.HandlerFunc) {
	if svc == nil {
		return
	}
	h := handler.NewMediaHandler(svc)
	mutating := func(handlers ...app.HandlerFunc) []app.HandlerFunc {
		return append(append([]app.HandlerFunc{}, writeLock...), handlers...)
	}
	imageUpload := middleware.Upload(svc.Storage(), svc.ImageUploadRules())
	modelUpload := middleware.Upload(svc.Storage(), svc.ModelUploadRules())

	api := r.Group("/api")

	images := api.Group("/images")
	images.GET("", h.ListImages)
	images.POST("", mutating(imageUpload, h.CreateImage)...)
	images.GET("/:id", h.GetImage)
	images.PATCH("/:id", mutating(imageUpload, h.UpdateImage)...)
	images.DELETE("/:id", mutating(h.DeleteImage)...)
	images.GET("/:id/download", h.DownloadImage)
	images.GET("/:id/preview", h.PreviewImage)

	models := api.Group("/models")
	models.GET("", h.ListModels)
	models.POST("", mutating(modelUpload, h.CreateModel)...)
	models.GET("/:id", h.GetModel)
	models.PATCH("/:id", mutating(modelUpload, h.UpdateModel)...)
	models.DELETE("/:id", mutating(h.DeleteModel)...)
	models.GET("/:id/download", h.DownloadModel)
	models.GET("/:id/preview", h.PreviewModel)
	models.GET("/:id/thumbnail", h.ModelThumbnail)

	api.GET("/version", version.GetVersion)
	r.GET("/ping", handler.Ping)
}
