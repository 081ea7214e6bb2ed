package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kmarket_dev_v1_202608/internal/controller"
	"kmarket_dev_v1_202608/internal/market"
	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/router"
	"kmarket_dev_v1_202608/internal/service"
	"kmarket_dev_v1_202608/internal/task"
	"kmarket_dev_v1_202608/pkg/database"
	"kmarket_dev_v1_202608/pkg/net"
)

func main() {
	// 1. 加载配置
	cfg := loadConfig()

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 启动定时任务
	deps.SyncTask.Start()
	defer deps.SyncTask.Stop()

	// 5. 初始化路由并启动服务
	r := gin.Default()
	router.InitRoutes(r, deps.OrderCtl, deps.InquiryCtl, deps.SyncCtl, deps.PricingCtl)
	startServer(r, cfg.ServerPort)
}

// ==================== 配置 ====================

// Config 运行配置, 全部来自环境变量
type Config struct {
	DatabaseDSN string
	ServerPort  string
	MasterKey   string

	// 同步
	MockOrderSync        bool
	MockCsSync           bool
	OrderLookbackMinutes int
	InquiryLookbackDays  int

	// 推送
	MockPush           bool
	TrackingEnabled    bool
	ReplyEnabled       bool
	TrackingMaxRetries int
	TrackingBackoffMs  int
	ReplyMaxRetries    int
	ReplyBackoffMs     int
}

func loadConfig() *Config {
	return &Config{
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=kmarket port=5432 sslmode=disable"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MasterKey:   getEnv("VAULT_MASTER_KEY", "dev-master-key"),

		MockOrderSync:        getEnvBool("MOCK_ORDER_SYNC", false),
		MockCsSync:           getEnvBool("MOCK_CS_SYNC", false),
		OrderLookbackMinutes: getEnvInt("ORDER_LOOKBACK_MINUTES", 60),
		InquiryLookbackDays:  getEnvInt("INQUIRY_LOOKBACK_DAYS", 7),

		MockPush:           getEnvBool("MOCK_PUSH", false),
		TrackingEnabled:    getEnvBool("TRACKING_PUSH_ENABLED", true),
		ReplyEnabled:       getEnvBool("REPLY_PUSH_ENABLED", true),
		TrackingMaxRetries: getEnvInt("TRACKING_PUSH_MAX_RETRIES", 3),
		TrackingBackoffMs:  getEnvInt("TRACKING_PUSH_BACKOFF_MS", 1000),
		ReplyMaxRetries:    getEnvInt("REPLY_PUSH_MAX_RETRIES", 2),
		ReplyBackoffMs:     getEnvInt("REPLY_PUSH_BACKOFF_MS", 1000),
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	SyncTask *task.SyncTask

	OrderCtl   *controller.OrderController
	InquiryCtl *controller.InquiryController
	SyncCtl    *controller.SyncController
	PricingCtl *controller.PricingController
}

// initDatabase 初始化数据库
func initDatabase(cfg *Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		&model.MarketConfig{},
		&model.Order{}, &model.OrderItem{},
		&model.CsInquiry{},
		&model.PricePolicy{},
		&model.SyncRunLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *Config) *Dependencies {
	// -------- Repo 层 --------
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	inquiryRepo := repository.NewCsInquiryRepository(db)
	configRepo := repository.NewMarketConfigRepository(db)
	policyRepo := repository.NewPricePolicyRepository(db)
	syncLogRepo := repository.NewSyncRunLogRepository(db)

	// -------- 市场适配器 --------
	dispatcher := net.NewDispatcher(0)
	registry := market.NewRegistry(
		market.NewCoupangAdapter(dispatcher),
		market.NewSmartStoreAdapter(dispatcher),
	)

	// -------- 业务服务 --------
	vaultSvc, err := service.NewVaultService(cfg.MasterKey)
	if err != nil {
		log.Fatalf("凭证服务初始化失败: %v", err)
	}

	syncSvc := service.NewSyncService(orderRepo, orderItemRepo, inquiryRepo, registry, vaultSvc, service.SyncConfig{
		MockOrderSync:        cfg.MockOrderSync,
		MockCsSync:           cfg.MockCsSync,
		OrderLookbackMinutes: cfg.OrderLookbackMinutes,
		InquiryLookbackDays:  cfg.InquiryLookbackDays,
	})

	pushSvc := service.NewPushService(registry, vaultSvc, service.PushConfig{
		MockPush:           cfg.MockPush,
		TrackingEnabled:    cfg.TrackingEnabled,
		ReplyEnabled:       cfg.ReplyEnabled,
		TrackingMaxRetries: cfg.TrackingMaxRetries,
		TrackingBackoff:    time.Duration(cfg.TrackingBackoffMs) * time.Millisecond,
		ReplyMaxRetries:    cfg.ReplyMaxRetries,
		ReplyBackoff:       time.Duration(cfg.ReplyBackoffMs) * time.Millisecond,
	})

	lifecycleSvc := service.NewLifecycleService(orderRepo)
	pricingSvc := service.NewPricingService()

	// -------- 任务 --------
	syncTask := task.NewSyncTask(configRepo, syncLogRepo, syncSvc)

	// -------- Controller 层 --------
	return &Dependencies{
		DB:         db,
		SyncTask:   syncTask,
		OrderCtl:   controller.NewOrderController(orderRepo, configRepo, lifecycleSvc, pushSvc),
		InquiryCtl: controller.NewInquiryController(inquiryRepo, configRepo, pushSvc),
		SyncCtl:    controller.NewSyncController(syncTask, syncLogRepo),
		PricingCtl: controller.NewPricingController(pricingSvc, policyRepo),
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
	}
	return defaultValue
}
