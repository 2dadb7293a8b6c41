// @title           GymCore HTTP Service API
// @version         1.0
// @description     连锁健身房管理服务：会籍、权益预约、私教、门禁与支付对账
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.yourcompany.com/support
// @contact.email  support@yourcompany.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"gymcore-http-service/internal/app/routes"
	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/internal/infrastructure/database"
	"gymcore-http-service/internal/queue"
	Logger "gymcore-http-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 创建优化的数据库连接池
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	// 根据配置执行不同的数据库操作
	if cfg.DBMigrationMode == "drop" {
		// 删除并重建表
		log.Println("警告: 在drop模式下运行，将删除并重建所有表")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("删除并重建表失败: %v", err)
		}
	} else {
		// 默认AutoMigrate，只会添加新列和新表，不会删除或修改列
		log.Println("在标准模式下运行，将只添加新列和新表")
		if err := autoMigrate(db); err != nil {
			log.Fatalf("自动迁移失败: %v", err)
		}
	}

	// 确保系统中有管理员账户
	ensureAdminExists(db, cfg)

	// Redis客户端（排行缓存与仪表盘统计）
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	// 创建服务容器并启动后台任务
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	startBackgroundTasks(cfg, serviceContainer)

	// 启动业务事件消费者（预约确认、支付到账、会籍到期提醒通知）
	go queue.StartNotificationConsumer(cfg.RabbitMQURL)

	// 初始化路由
	r := routes.SetupRouterWithContainer(cfg, serviceContainer)

	// 使用配置中的端口，而不是直接从环境变量获取
	port := cfg.ServerPort

	// 打印系统信息
	printSystemInfo(pool)

	// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// startBackgroundTasks 启动周期性后台任务：会籍过期清理与设备离线判定
func startBackgroundTasks(cfg *config.Config, c *container.ServiceContainer) {
	interval := time.Duration(cfg.MembershipSweepInterval) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	membershipService := c.GetService("membership").(services.InterfaceMembershipService)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			expired, err := membershipService.ExpireOverdue()
			if err != nil {
				Logger.Error("会籍过期清理失败: %v", err)
				continue
			}
			if expired > 0 {
				Logger.Info("会籍过期清理完成，共%d条", expired)
			}
		}
	}()

	deviceService := c.GetService("device").(services.InterfaceDeviceService)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			marked, err := deviceService.MarkStaleOffline(3 * time.Minute)
			if err != nil {
				Logger.Error("设备离线判定失败: %v", err)
				continue
			}
			if marked > 0 {
				Logger.Info("标记%d台心跳超时设备为离线", marked)
			}
		}
	}()
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Branch{},
		&models.Member{},
		&models.Staff{},
		&models.StaffAttendance{},
		&models.MembershipPlan{},
		&models.PlanBenefit{},
		&models.Membership{},
		&models.MemberCheckIn{},
		&models.BenefitUsageRecord{},
		&models.BenefitSlot{},
		&models.BenefitBooking{},
		&models.TrainingPackage{},
		&models.TrainingSession{},
		&models.Invoice{},
		&models.PaymentTransaction{},
		&models.AccessDevice{},
		&models.AccessEvent{},
		&models.DeviceSyncItem{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	// 获取底层SQL连接
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 禁用外键约束检查
	if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("禁用外键约束检查失败: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1") // 确保在函数结束时重新启用外键约束

	// 删除所有表
	tables := []string{
		"admins", "branches", "members", "staffs", "staff_attendances",
		"membership_plans", "plan_benefits", "memberships", "member_check_ins",
		"benefit_usage_records", "benefit_slots", "benefit_bookings",
		"training_packages", "training_sessions", "invoices", "payment_transactions",
		"access_devices", "access_events", "device_sync_items",
	}

	for _, table := range tables {
		log.Printf("删除表: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("删除表失败: %v", err)
		}
	}

	// 重新创建表
	return autoMigrate(db)
}

// ensureAdminExists 确保系统中有管理员账户
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.Admin{}).Count(&count)

	if count == 0 {
		// 如果没有管理员，创建默认管理员
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("生成密码哈希失败: %v", err)
		}

		admin := models.Admin{
			Username: "admin",
			Password: string(hashedPassword),
			Role:     "system_admin",
			Status:   "active",
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("创建默认管理员失败: %v", err)
		}

		log.Println("已创建默认管理员账户")
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("数据库连接池状态: %+v", stats)
	}

	// 打印系统资源信息
	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())

	// 打印内存信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
