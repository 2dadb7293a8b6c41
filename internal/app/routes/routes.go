package routes

import (
	"time"

	_ "gymcore-http-service/docs"
	"gymcore-http-service/internal/app/controllers"
	"gymcore-http-service/internal/app/middleware"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// SetupRouterWithContainer 使用已建好的服务容器初始化路由（主程序复用容器跑后台任务时使用）
func SetupRouterWithContainer(cfg *config.Config, serviceContainer *container.ServiceContainer) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	middleware.InitAuthMiddleware(cfg, serviceContainer.GetDB())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由（终端回调、支付回调与登录）
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	api.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health", controllers.HandleHealthFunc(container, "ping")) // 兼容Docker健康检查

	// 健康状态路由组
	healthGroup := api.Group("/health")
	healthGroup.GET("/status", controllers.HandleHealthFunc(container, "status"))
	healthGroup.GET("/cache-stats", controllers.HandleHealthFunc(container, "cacheStats"))

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 门禁终端路由组 - 设备侧回调，不走JWT
	accessGroup := api.Group("/access")
	accessGroup.Use(middleware.PathRateLimiter(50, 100)) // 终端上报频率高于人工接口
	accessGroup.POST("/events", controllers.HandleAccessFunc(container, "accessEvent"))
	accessGroup.POST("/heartbeat", controllers.HandleAccessFunc(container, "heartbeat"))
	accessGroup.GET("/devices/:serial/roster", controllers.HandleAccessFunc(container, "fullRoster"))
	accessGroup.GET("/devices/:serial/sync", controllers.HandleAccessFunc(container, "pullSync"))
	accessGroup.POST("/devices/:serial/sync/ack", controllers.HandleAccessFunc(container, "ackSync"))

	// 支付网关回调路由 - 网关侧签名鉴权
	paymentGroup := api.Group("/payments")
	paymentGroup.Use(middleware.PathRateLimiter(20, 40))
	paymentGroup.POST("/webhook", controllers.HandlePaymentFunc(container, "webhook"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 员工及以上角色可访问的门店运营路由
	staffAuth := api.Group("/")
	staffAuth.Use(middleware.AuthenticateStaff())
	staffAuth.Use(middleware.IPRateLimiter(30, 50))

	// 会员路由
	memberGroup := staffAuth.Group("/members")
	memberGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleMemberFunc(container, "getMembers"))
	memberGroup.GET("/:id", controllers.HandleMemberFunc(container, "getMember"))
	memberGroup.POST("", controllers.HandleMemberFunc(container, "createMember"))
	memberGroup.PUT("/:id", controllers.HandleMemberFunc(container, "updateMember"))
	memberGroup.DELETE("/:id", controllers.HandleMemberFunc(container, "deleteMember"))
	memberGroup.POST("/:id/face", controllers.HandleMemberFunc(container, "enrollFace"))
	memberGroup.GET("/:id/memberships", controllers.HandleMemberFunc(container, "getMemberMemberships"))
	memberGroup.GET("/:id/invoices", controllers.HandlePaymentFunc(container, "getMemberInvoices"))
	memberGroup.GET("/:id/bookings", controllers.HandleBookingFunc(container, "getMemberBookings"))

	// 套餐路由
	planGroup := staffAuth.Group("/plans")
	planGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePlanFunc(container, "getPlans"))
	planGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePlanFunc(container, "getPlan"))

	// 会籍路由
	membershipGroup := staffAuth.Group("/memberships")
	membershipGroup.POST("", controllers.HandleMembershipFunc(container, "purchaseMembership"))
	membershipGroup.GET("/:id", controllers.HandleMembershipFunc(container, "getMembership"))
	membershipGroup.POST("/:id/renew", controllers.HandleMembershipFunc(container, "renewMembership"))
	membershipGroup.POST("/:id/freeze", controllers.HandleMembershipFunc(container, "freezeMembership"))
	membershipGroup.POST("/:id/unfreeze", controllers.HandleMembershipFunc(container, "unfreezeMembership"))
	membershipGroup.POST("/:id/cancel", controllers.HandleMembershipFunc(container, "cancelMembership"))

	// 权益路由
	membershipGroup.GET("/:id/benefits", controllers.HandleBenefitFunc(container, "getBalances"))
	membershipGroup.POST("/:id/benefits/validate", controllers.HandleBenefitFunc(container, "validateUsage"))
	membershipGroup.POST("/:id/benefits/usage", controllers.HandleBenefitFunc(container, "recordUsage"))
	membershipGroup.GET("/:id/benefits/history", controllers.HandleBenefitFunc(container, "getUsageHistory"))

	// 预约路由
	slotGroup := staffAuth.Group("/slots")
	slotGroup.GET("", controllers.HandleBookingFunc(container, "getSlots"))
	slotGroup.GET("/:id", controllers.HandleBookingFunc(container, "getSlot"))
	slotGroup.POST("", controllers.HandleBookingFunc(container, "createSlot"))
	slotGroup.POST("/:id/book", controllers.HandleBookingFunc(container, "bookSlot"))

	bookingGroup := staffAuth.Group("/bookings")
	bookingGroup.POST("/:id/cancel", controllers.HandleBookingFunc(container, "cancelBooking"))
	bookingGroup.POST("/:id/complete", controllers.HandleBookingFunc(container, "completeBooking"))

	// 私教课包路由
	trainingGroup := staffAuth.Group("/training")
	trainingGroup.GET("/packages", controllers.HandleTrainingFunc(container, "getPackages"))
	trainingGroup.GET("/packages/:id", controllers.HandleTrainingFunc(container, "getPackage"))
	trainingGroup.POST("/packages", controllers.HandleTrainingFunc(container, "createPackage"))
	trainingGroup.POST("/packages/:id/use", controllers.HandleTrainingFunc(container, "useSession"))
	trainingGroup.DELETE("/packages/:id", controllers.HandleTrainingFunc(container, "cancelPackage"))

	// 账单路由
	invoiceGroup := staffAuth.Group("/invoices")
	invoiceGroup.GET("/:id", controllers.HandlePaymentFunc(container, "getInvoice"))
	invoiceGroup.POST("/:id/mark-paid", controllers.HandlePaymentFunc(container, "markInvoicePaid"))

	// 门禁事件查询路由
	staffAuth.GET("/access/events", controllers.HandleAccessFunc(container, "getAccessEvents"))

	// 管理员专属路由
	adminAuth := api.Group("/")
	adminAuth.Use(middleware.AuthenticateAdmin())
	adminAuth.Use(middleware.IPRateLimiter(30, 50))

	// 管理员路由
	adminGroup := adminAuth.Group("/admin")
	adminGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleAdminFunc(container, "getAdmins"))
	adminGroup.GET("/dashboard", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleAdminFunc(container, "getDashboard"))
	adminGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleAdminFunc(container, "getAdmin"))
	adminGroup.POST("", controllers.HandleAdminFunc(container, "createAdmin"))
	adminGroup.PUT("/:id", controllers.HandleAdminFunc(container, "updateAdmin"))
	adminGroup.DELETE("/:id", controllers.HandleAdminFunc(container, "deleteAdmin"))

	// 分店路由
	branchGroup := adminAuth.Group("/branches")
	branchGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBranchFunc(container, "getBranches"))
	branchGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBranchFunc(container, "getBranch"))
	branchGroup.POST("", controllers.HandleBranchFunc(container, "createBranch"))
	branchGroup.PUT("/:id", controllers.HandleBranchFunc(container, "updateBranch"))
	branchGroup.DELETE("/:id", controllers.HandleBranchFunc(container, "deleteBranch"))

	// 套餐管理路由（写操作仅管理员）
	planAdminGroup := adminAuth.Group("/plans")
	planAdminGroup.POST("", controllers.HandlePlanFunc(container, "createPlan"))
	planAdminGroup.PUT("/:id", controllers.HandlePlanFunc(container, "updatePlan"))
	planAdminGroup.DELETE("/:id", controllers.HandlePlanFunc(container, "deactivatePlan"))

	// 员工路由
	staffGroup := adminAuth.Group("/staff")
	staffGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleStaffFunc(container, "getStaffList"))
	staffGroup.GET("/:id", controllers.HandleStaffFunc(container, "getStaff"))
	staffGroup.POST("", controllers.HandleStaffFunc(container, "createStaff"))
	staffGroup.PUT("/:id", controllers.HandleStaffFunc(container, "updateStaff"))
	staffGroup.DELETE("/:id", controllers.HandleStaffFunc(container, "deactivateStaff"))
	staffGroup.GET("/:id/attendance", controllers.HandleStaffFunc(container, "getAttendance"))
	staffGroup.POST("/:id/checkout", controllers.HandleStaffFunc(container, "checkOut"))

	// 设备管理路由
	deviceGroup := adminAuth.Group("/devices")
	deviceGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleDeviceFunc(container, "getDevices"))
	deviceGroup.GET("/:id", controllers.HandleDeviceFunc(container, "getDevice"))
	deviceGroup.POST("", controllers.HandleDeviceFunc(container, "createDevice"))
	deviceGroup.PUT("/:id", controllers.HandleDeviceFunc(container, "updateDevice"))
	deviceGroup.DELETE("/:id", controllers.HandleDeviceFunc(container, "deleteDevice"))
	deviceGroup.POST("/:id/unlock", controllers.HandleDeviceFunc(container, "remoteUnlock"))
}
