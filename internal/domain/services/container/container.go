package container

import (
	"context"
	"log"
	"sync"
	"time"

	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/internal/queue"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService services.InterfaceJWTService

	// 数据存储服务
	redisService services.InterfaceRedisService

	// 消息队列
	publisher *queue.Publisher

	// MQTT终端通道服务
	mqttDeviceService services.InterfaceMQTTDeviceService

	// 业务服务
	branchService     services.InterfaceBranchService
	memberService     services.InterfaceMemberService
	planService       services.InterfacePlanService
	membershipService services.InterfaceMembershipService
	benefitService    services.InterfaceBenefitService
	bookingService    services.InterfaceBookingService
	accessService     services.InterfaceAccessService
	deviceService     services.InterfaceDeviceService
	staffService      services.InterfaceStaffService
	trainingService   services.InterfaceTrainingService
	paymentService    services.InterfacePaymentService
	adminService      services.InterfaceAdminService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)

	// 初始化Redis服务
	c.redisService = services.NewRedisService(c.config)

	// 初始化消息队列发布端
	c.publisher = queue.NewPublisher(c.config.RabbitMQURL)

	// 初始化终端与花名册同步服务
	c.deviceService = services.NewDeviceService(c.db, c.config, c.redisService)

	// 初始化MQTT终端通道服务，并回填花名册同步通知通道
	c.mqttDeviceService = services.NewMQTTDeviceService(c.db, c.config, c.deviceService)
	c.deviceService.SetSyncNotifier(c.mqttDeviceService)

	// 连接MQTT服务器
	if err := c.mqttDeviceService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化业务服务
	c.branchService = services.NewBranchService(c.db, c.config)
	c.memberService = services.NewMemberService(c.db, c.config, c.deviceService)
	c.planService = services.NewPlanService(c.db, c.config)
	c.benefitService = services.NewBenefitService(c.db, c.config)
	c.membershipService = services.NewMembershipService(c.db, c.config, c.publisher)
	c.bookingService = services.NewBookingService(c.db, c.config, c.benefitService, c.publisher)
	c.accessService = services.NewAccessService(c.db, c.config)
	c.staffService = services.NewStaffService(c.db, c.config, c.deviceService)
	c.paymentService = services.NewPaymentService(c.db, c.config, c.publisher)
	c.trainingService = services.NewTrainingService(c.db, c.config, c.paymentService)
	c.adminService = services.NewAdminService(c.db, c.config, c.redisService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "queue":
		return c.publisher
	case "mqtt_device":
		return c.mqttDeviceService
	case "branch":
		return c.branchService
	case "member":
		return c.memberService
	case "plan":
		return c.planService
	case "membership":
		return c.membershipService
	case "benefit":
		return c.benefitService
	case "booking":
		return c.bookingService
	case "access":
		return c.accessService
	case "device":
		return c.deviceService
	case "staff":
		return c.staffService
	case "training":
		return c.trainingService
	case "payment":
		return c.paymentService
	case "admin":
		return c.adminService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
