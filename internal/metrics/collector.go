package metrics

import (
	"context"
	"time"

	"github.com/mautops/planflow-gin/internal/repository"
	"gorm.io/gorm"
)

// Collector 指标收集器
// 定期刷新数据库连接数与计划状态分布指标
type Collector struct {
	db       *gorm.DB
	planRepo repository.PlanRepository
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		planRepo: repository.NewPlanRepository(db),
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)

			if counts, err := c.planRepo.CountByStatus(); err == nil {
				for status, count := range counts {
					UpdatePlansByStatus(status, float64(count))
				}
			}
		}
	}
}
