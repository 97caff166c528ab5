package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Mailbox ingestion of every enabled configuration, every 5 minutes
	CronScheduleMailboxIngestion string `env:"CRON_SCHEDULE_MAILBOX_INGESTION" envDefault:"0 */5 * * * *"`
}
