package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	annhttp "github.com/molspace/molspace-backend/internal/annotations/http"
	annrepo "github.com/molspace/molspace-backend/internal/annotations/repository"
	annsvc "github.com/molspace/molspace-backend/internal/annotations/service"
	httpapi "github.com/molspace/molspace-backend/internal/api/http"
	apimw "github.com/molspace/molspace-backend/internal/api/http/middleware"
	authmw "github.com/molspace/molspace-backend/internal/auth/middleware"
	cmthttp "github.com/molspace/molspace-backend/internal/comments/http"
	cmtrepo "github.com/molspace/molspace-backend/internal/comments/repository"
	cmtsvc "github.com/molspace/molspace-backend/internal/comments/service"
	projhttp "github.com/molspace/molspace-backend/internal/projects/http"
	projrepo "github.com/molspace/molspace-backend/internal/projects/repository"
	projsvc "github.com/molspace/molspace-backend/internal/projects/service"
	"github.com/molspace/molspace-backend/internal/ratelimit"
	"github.com/molspace/molspace-backend/internal/realtime"
	rthttp "github.com/molspace/molspace-backend/internal/realtime/http"
	"github.com/molspace/molspace-backend/internal/users"
	viewhttp "github.com/molspace/molspace-backend/internal/views/http"
	viewrepo "github.com/molspace/molspace-backend/internal/views/repository"
	viewsvc "github.com/molspace/molspace-backend/internal/views/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Auth        *fbauth.Client
	Storage     projsvc.ObjectStore
}

// BuildRouter wires repositories, services and handlers into the API surface.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.Default())
	r.Use(apimw.RequestID())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Pool, dep.Redis)
	healthHandler.RegisterRoutes(r)

	bridge := realtime.NewBridge(dep.Redis)

	userRepo := users.NewRepo(dep.Pool)
	projectRepo := projrepo.NewProjectRepository(dep.DB)
	fileRepo := projrepo.NewFileRepository(dep.DB)

	projectSvc := projsvc.New(projectRepo, fileRepo, dep.Storage, bridge)
	annotationSvc := annsvc.New(annrepo.New(dep.DB), fileRepo, bridge)
	commentSvc := cmtsvc.New(cmtrepo.New(dep.DB), bridge)
	viewSvc := viewsvc.New(viewrepo.New(dep.DB), projectRepo, userRepo)

	api := r.Group("/api/v1")

	// One limiter shared across both groups so a caller cannot double its
	// budget by mixing authed and public routes.
	limiter := ratelimit.New(20, 40)

	authed := api.Group("/projects")
	authed.Use(authmw.RequireUser(dep.Auth, userRepo), limiter.Middleware())

	public := api.Group("/projects")
	public.Use(authmw.OptionalUser(dep.Auth, userRepo), limiter.Middleware())

	projhttp.New(projectSvc, viewSvc).Register(authed, public)
	viewhttp.New(viewSvc).Register(authed)

	annhttp.New(annotationSvc, projectSvc).Register(
		authed.Group("/:id/annotations"),
		public.Group("/:id/annotations"),
	)
	cmthttp.New(commentSvc, projectSvc).Register(
		authed.Group("/:id/comments"),
		public.Group("/:id/comments"),
	)

	rthttp.New(bridge).Register(public.Group("/:id"), public)

	return r
}
