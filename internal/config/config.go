package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		OsonKassa
		Sync
		Notify
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	OsonKassa struct {
		BaseURL  string
		Username string
		Password string
		TenantID string
	}
	Sync struct {
		Enabled           bool
		Schedule          string // Cron format: "*/10 * * * *" = every 10 minutes
		HourlySchedule    string // Cron format: "0 * * * *" = hourly
		DailySchedule     string // Cron format: "0 6 * * *" = daily at 06:00
		PageSizeInventory int
		PageSizeSales     int
		ParallelPages     int
		InsertBatchSize   int
		ItemsBatchSize    int
		ItemsBatchDelay   time.Duration
		ItemsStaleness    time.Duration
		RetentionDays     int // Days to keep sales (default: 30)
		LowStockThreshold float64
	}
	Notify struct {
		QueueSize int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("osonkassa_base_url", "https://api.osonkassa.uz")
	v.SetDefault("osonkassa_username", "")
	v.SetDefault("osonkassa_password", "")
	v.SetDefault("osonkassa_tenant_id", "")

	// Sync defaults
	v.SetDefault("sync_enabled", true)
	v.SetDefault("sync_schedule", "*/10 * * * *")  // Every 10 minutes
	v.SetDefault("sync_hourly_schedule", "0 * * * *")
	v.SetDefault("sync_daily_schedule", "0 6 * * *")
	v.SetDefault("sync_page_size_inventory", 1000)
	v.SetDefault("sync_page_size_sales", 500)
	v.SetDefault("sync_parallel_pages", 3)
	v.SetDefault("sync_insert_batch_size", 5000)
	v.SetDefault("sync_items_batch_size", 5)
	v.SetDefault("sync_items_batch_delay", "100ms")
	v.SetDefault("sync_items_staleness", "2h")
	v.SetDefault("sync_retention_days", 30)
	v.SetDefault("sync_low_stock_threshold", 0) // 0 disables the check

	v.SetDefault("notify_queue_size", 256)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		OsonKassa: OsonKassa{
			BaseURL:  v.GetString("OSONKASSA_BASE_URL"),
			Username: v.GetString("OSONKASSA_USERNAME"),
			Password: v.GetString("OSONKASSA_PASSWORD"),
			TenantID: v.GetString("OSONKASSA_TENANT_ID"),
		},
		Sync: Sync{
			Enabled:           v.GetBool("SYNC_ENABLED"),
			Schedule:          v.GetString("SYNC_SCHEDULE"),
			HourlySchedule:    v.GetString("SYNC_HOURLY_SCHEDULE"),
			DailySchedule:     v.GetString("SYNC_DAILY_SCHEDULE"),
			PageSizeInventory: v.GetInt("SYNC_PAGE_SIZE_INVENTORY"),
			PageSizeSales:     v.GetInt("SYNC_PAGE_SIZE_SALES"),
			ParallelPages:     v.GetInt("SYNC_PARALLEL_PAGES"),
			InsertBatchSize:   v.GetInt("SYNC_INSERT_BATCH_SIZE"),
			ItemsBatchSize:    v.GetInt("SYNC_ITEMS_BATCH_SIZE"),
			ItemsBatchDelay:   v.GetDuration("SYNC_ITEMS_BATCH_DELAY"),
			ItemsStaleness:    v.GetDuration("SYNC_ITEMS_STALENESS"),
			RetentionDays:     v.GetInt("SYNC_RETENTION_DAYS"),
			LowStockThreshold: v.GetFloat64("SYNC_LOW_STOCK_THRESHOLD"),
		},
		Notify: Notify{
			QueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
