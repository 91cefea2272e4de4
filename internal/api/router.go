package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasknotes/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth       *service.AuthService
	Todos      *service.TodoService
	Notes      *service.NoteService
	Attributes *service.AttributeService
	Templates  *service.TemplateService
	Generation *service.GenerationService
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(svc Services, internalToken string, log *zap.SugaredLogger, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), corsMiddleware())

	authHandler := &AuthHandler{auth: svc.Auth}
	todoHandler := &TodoHandler{todos: svc.Todos, log: log}
	noteHandler := &NoteHandler{notes: svc.Notes}
	attrHandler := &AttributeHandler{attrs: svc.Attributes}
	templateHandler := &TemplateHandler{templates: svc.Templates}
	generateHandler := &GenerateHandler{generation: svc.Generation, log: log}

	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
	}

	private := r.Group("/api/v1")
	private.Use(Auth(svc.Auth))
	{
		private.GET("/todos", todoHandler.List)
		private.POST("/todos", todoHandler.Create)
		private.GET("/todos/:id", todoHandler.Get)
		private.PATCH("/todos/:id", todoHandler.Update)
		private.POST("/todos/:id/toggle", todoHandler.ToggleComplete)
		private.DELETE("/todos/:id", todoHandler.Delete)

		private.GET("/notes", noteHandler.List)
		private.POST("/notes", noteHandler.Create)
		private.GET("/notes/:id", noteHandler.Get)
		private.PATCH("/notes/:id", noteHandler.Update)
		private.DELETE("/notes/:id", noteHandler.Delete)

		private.GET("/attributes", attrHandler.List)
		private.GET("/attributes/stats", attrHandler.Stats)
		private.POST("/attributes", attrHandler.Create)
		private.PATCH("/attributes/:id", attrHandler.Update)
		private.DELETE("/attributes/:id", attrHandler.Delete)

		private.GET("/templates", templateHandler.List)
		private.POST("/templates", templateHandler.Create)
		private.POST("/templates/generate", generateHandler.GenerateForUser)
		private.GET("/templates/:id", templateHandler.Get)
		private.PATCH("/templates/:id", templateHandler.Update)
		private.POST("/templates/:id/toggle", templateHandler.Toggle)
		private.DELETE("/templates/:id", templateHandler.Delete)
	}

	internal := r.Group("/internal")
	internal.Use(InternalAuth(internalToken))
	{
		internal.POST("/generate", generateHandler.GenerateAll)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	return r
}
