package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/internal/controllers"
	"shift-scheduler/internal/listeners"
	"shift-scheduler/internal/repositories"
	"shift-scheduler/internal/services"
	"shift-scheduler/pkg/config"
	"shift-scheduler/pkg/eventbus"
	"shift-scheduler/pkg/middleware"
	"shift-scheduler/pkg/service"
	"shift-scheduler/pkg/validation"
	"shift-scheduler/pkg/websocket"
)

type Loggers struct {
	Main   *zap.Logger
	Auth   *zap.Logger
	Shift  *zap.Logger
	Access *zap.Logger
}

// Controllers - все контроллеры API. Отдельно от InitRouter, чтобы маршруты
// можно было проверить без базы данных.
type Controllers struct {
	Auth         *controllers.AuthController
	ShiftRequest *controllers.ShiftRequestController
	Equipment    *controllers.EquipmentController
	Access       *controllers.AccessController
	Feed         *controllers.FeedController
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	bus *eventbus.Bus,
	hub *websocket.Hub,
	jwtSvc service.JWTService,
	validator *validation.CustomValidator,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	roleRepo := repositories.NewRoleRepository(dbConn)
	requestRepo := repositories.NewShiftRequestRepository(dbConn, loggers.Shift)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	edgeRepo := repositories.NewDependencyEdgeRepository(dbConn)
	grantRepo := repositories.NewAccessGrantRepository(dbConn, loggers.Access)
	warehouseRepo := repositories.NewWarehouseRepository(dbConn)

	var cacheRepo repositories.CacheRepositoryInterface
	if redisClient != nil {
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	}

	// --- 2. СЕРВИСЫ ---
	authService := services.NewAuthService(userRepo, roleRepo, cacheRepo, jwtSvc, validator, loggers.Auth, cfg.Auth)
	scopeService := services.NewAccessScopeService(grantRepo, warehouseRepo, cacheRepo, cfg.Access.ScopeCacheTTL, loggers.Access)
	grantService := services.NewAccessGrantService(txManager, grantRepo, warehouseRepo, userRepo, validator, bus, loggers.Access)
	resolver := services.NewDependencyResolver(txManager, edgeRepo, requestRepo, loggers.Shift)
	shiftService := services.NewShiftRequestService(txManager, requestRepo, equipmentRepo, resolver, scopeService, bus, validator, loggers.Shift)
	equipmentService := services.NewEquipmentService(txManager, equipmentRepo, edgeRepo, validator, loggers.Main)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewScopeCacheListener(scopeService, loggers.Access).Register(bus)
	listeners.NewSlotFeedListener(hub, authService, scopeService, loggers.Shift).Register(bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	ctrls := Controllers{
		Auth:         controllers.NewAuthController(authService, loggers.Auth),
		ShiftRequest: controllers.NewShiftRequestController(shiftService, loggers.Shift),
		Equipment:    controllers.NewEquipmentController(equipmentService, loggers.Main),
		Access:       controllers.NewAccessController(scopeService, grantService, loggers.Access),
		Feed:         controllers.NewFeedController(hub, jwtSvc, authService, loggers.Shift),
	}
	authMW := middleware.NewAuthMiddleware(jwtSvc, authService, loggers.Auth)

	RegisterRoutes(e, ctrls, authMW)
	loggers.Main.Info("InitRouter: Маршруты созданы")
}

func RegisterRoutes(e *echo.Echo, ctrls Controllers, authMW *middleware.AuthMiddleware) {
	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, ctrls.Auth)
	runShiftRequestRouter(secureGroup, ctrls.ShiftRequest)
	runEquipmentRouter(secureGroup, ctrls.Equipment)
	runAccessRouter(secureGroup, ctrls.Access)
	if ctrls.Feed != nil {
		api.GET("/ws/shift-requests", ctrls.Feed.ServeWs)
	}
}
