package task

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/service"
)

// ==================== SyncTask 市场同步调度任务 ====================

// SyncTask 定时拉取各市场的订单与客服咨询
// 各市场配置严格串行处理, 避免触发市场侧限流
type SyncTask struct {
	configRepo  repository.MarketConfigRepository
	syncLogRepo repository.SyncRunLogRepository
	syncService *service.SyncService
	cron        *cron.Cron

	// 相邻配置之间的间隔
	sleepTime time.Duration
}

// NewSyncTask 创建同步任务
func NewSyncTask(
	configRepo repository.MarketConfigRepository,
	syncLogRepo repository.SyncRunLogRepository,
	syncService *service.SyncService,
) *SyncTask {
	return &SyncTask{
		configRepo:  configRepo,
		syncLogRepo: syncLogRepo,
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
		sleepTime:   500 * time.Millisecond,
	}
}

// SetSleepTime 设置配置间隔, 仅测试使用
func (t *SyncTask) SetSleepTime(sleep time.Duration) {
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *SyncTask) Start() {
	// 订单每 10 分钟
	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.RunOrderSync(ctx, "cron", 0)
	})
	if err != nil {
		log.Printf("[SyncTask] 订单定时任务启动失败: %v", err)
		return
	}

	// 客服咨询每 30 分钟
	_, err = t.cron.AddFunc("0 */30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.RunInquirySync(ctx, "cron", 0)
	})
	if err != nil {
		log.Printf("[SyncTask] 咨询定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[SyncTask] 已启动 (订单每10分钟, 咨询每30分钟)")
}

// Stop 停止任务
func (t *SyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SyncTask] 已停止")
}

// ==================== 运行编排 ====================

// RunOrderSync 串行同步所有活跃配置的订单, lookbackMinutes 为 0 时取上限
func (t *SyncTask) RunOrderSync(ctx context.Context, actor string, lookbackMinutes int) *model.SyncRunLog {
	return t.run(ctx, actor, model.SyncKindOrder, func(ctx context.Context, cfg *model.MarketConfig) (*service.SyncRunResult, error) {
		return t.syncService.SyncOrders(ctx, cfg, lookbackMinutes)
	})
}

// RunInquirySync 串行同步所有活跃配置的客服咨询
func (t *SyncTask) RunInquirySync(ctx context.Context, actor string, lookbackDays int) *model.SyncRunLog {
	return t.run(ctx, actor, model.SyncKindInquiry, func(ctx context.Context, cfg *model.MarketConfig) (*service.SyncRunResult, error) {
		return t.syncService.SyncInquiries(ctx, cfg, lookbackDays)
	})
}

type syncCall func(ctx context.Context, cfg *model.MarketConfig) (*service.SyncRunResult, error)

// run 顺序处理所有活跃配置并落库审计日志
// 单个配置失败记为警告, 不中断其余配置
func (t *SyncTask) run(ctx context.Context, actor, kind string, call syncCall) *model.SyncRunLog {
	start := time.Now()
	runLog := &model.SyncRunLog{
		RunID: uuid.NewString(),
		Actor: actor,
		Kind:  kind,
	}

	log.Printf("[SyncTask] [%s] 开始同步 (run=%s, actor=%s)", kind, runLog.RunID, actor)

	configs, err := t.configRepo.ListActive(ctx)
	if err != nil {
		log.Printf("[SyncTask] [%s] 获取市场配置失败: %v", kind, err)
		runLog.Warnings = append(runLog.Warnings, "获取市场配置失败: "+err.Error())
		t.persist(ctx, runLog, start)
		return runLog
	}
	runLog.ConfigCount = len(configs)

	for i := range configs {
		cfg := &configs[i]
		select {
		case <-ctx.Done():
			log.Printf("[SyncTask] [%s] 任务超时停止", kind)
			runLog.Warnings = append(runLog.Warnings, "任务超时, 剩余配置未处理")
			t.persist(ctx, runLog, start)
			return runLog
		default:
		}

		if i > 0 {
			time.Sleep(t.sleepTime)
		}

		result, err := call(ctx, cfg)
		if err != nil {
			log.Printf("[SyncTask] [%s] 配置 %d(%s) 同步失败: %v", kind, cfg.ID, cfg.MarketCode, err)
			runLog.Warnings = append(runLog.Warnings, err.Error())
			continue
		}

		runLog.Fetched += result.Fetched
		runLog.Upserted += result.Upserted
		runLog.Warnings = append(runLog.Warnings, result.Warnings...)

		if result.Fetched > 0 {
			log.Printf("[SyncTask] [%s] 配置 %d(%s): 拉取 %d, 新增 %d",
				kind, cfg.ID, cfg.MarketCode, result.Fetched, result.Upserted)
		}
	}

	t.persist(ctx, runLog, start)
	log.Printf("[SyncTask] [%s] 同步完成: 配置 %d, 拉取 %d, 新增 %d, 警告 %d (%.1fs)",
		kind, runLog.ConfigCount, runLog.Fetched, runLog.Upserted, len(runLog.Warnings),
		time.Since(start).Seconds())
	return runLog
}

func (t *SyncTask) persist(ctx context.Context, runLog *model.SyncRunLog, start time.Time) {
	runLog.DurationMs = time.Since(start).Milliseconds()
	if err := t.syncLogRepo.Create(ctx, runLog); err != nil {
		log.Printf("[SyncTask] 审计日志写入失败: %v", err)
	}
}

// ==================== 手动触发 ====================

// SyncOrdersNow 异步触发一次订单同步
func (t *SyncTask) SyncOrdersNow(actor string, lookbackMinutes int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.RunOrderSync(ctx, actor, lookbackMinutes)
	}()
}

// SyncInquiriesNow 异步触发一次客服咨询同步
func (t *SyncTask) SyncInquiriesNow(actor string, lookbackDays int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.RunInquirySync(ctx, actor, lookbackDays)
	}()
}
