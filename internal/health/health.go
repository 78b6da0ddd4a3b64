package health

import (
	"context"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db    Pinger
	redis func() *redis.Client
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Redis    ComponentHealth `json:"redis"`
	Host     *HostStats      `json:"host,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// HostStats is the machine snapshot returned by the detailed check
type HostStats struct {
	Hostname      string  `json:"hostname"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	Goroutines    int     `json:"goroutines"`
}

// NewHealthChecker checks db and the redis client returned by redisClient.
// A nil redis client means caching is disabled and is reported as such.
func NewHealthChecker(db *pgxpool.Pool, redisClient func() *redis.Client) *HealthChecker {
	var p Pinger
	if db != nil {
		p = db
	}
	return newHealthChecker(p, redisClient)
}

func newHealthChecker(db Pinger, redisClient func() *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redis: redisClient}
}

// CheckBasic reports healthy when postgres answers; redis is optional
func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Redis:    h.checkRedis(),
	}
}

// CheckDetailed adds host statistics to CheckBasic
func (h *HealthChecker) CheckDetailed() HealthStatus {
	status := h.CheckBasic()
	status.Host = hostStats()
	return status
}

func (h *HealthChecker) checkDatabase() ComponentHealth {
	if h.db == nil {
		return ComponentHealth{Status: "unhealthy", Error: "not connected"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	return component(start, err)
}

func (h *HealthChecker) checkRedis() ComponentHealth {
	var c *redis.Client
	if h.redis != nil {
		c = h.redis()
	}
	if c == nil {
		return ComponentHealth{Status: "disabled"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := c.Ping(ctx).Err()
	return component(start, err)
}

func component(start time.Time, err error) ComponentHealth {
	c := ComponentHealth{Status: "healthy", ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status = "unhealthy"
		c.Error = err.Error()
	}
	return c
}

// hostStats collects what gopsutil can read; unreadable values stay zero
func hostStats() *HostStats {
	stats := &HostStats{Goroutines: runtime.NumGoroutine()}

	if info, err := host.Info(); err == nil {
		stats.Hostname = info.Hostname
		stats.UptimeSeconds = info.Uptime
	}
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
	}
	if usage, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = usage.UsedPercent
	}
	return stats
}
