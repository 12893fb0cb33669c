package settingsstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Environment variables consulted when the database holds no override.
const (
	EnvCategorySyncEnabled  = "CATEGORY_SYNC_ENABLED"
	EnvCategorySyncSchedule = "CATEGORY_SYNC_SCHEDULE"
)

// DefaultCategorySyncSchedule refreshes every source's categories every 6 hours.
const DefaultCategorySyncSchedule = "0 */6 * * *"

// CategorySyncConfig represents the effective configuration for scheduled category sync
type CategorySyncConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// CategorySyncConfigInfo includes source information for each field
type CategorySyncConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"` // "database", "environment", "default"

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`
}

// CategorySyncStatus represents the last sync run
type CategorySyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Status     string     `json:"status,omitempty"`  // "success", "failed", ""
	Message    string     `json:"message,omitempty"` // Failure reasons or a summary
}

// GetCategorySyncEnabled returns whether scheduled sync is enabled (default: disabled)
func (s *SettingsStore) GetCategorySyncEnabled() bool {
	v, _ := s.resolve(entities.SettingKeyCategorySyncEnabled, EnvCategorySyncEnabled, "false")
	return parseBool(v)
}

// GetCategorySyncEnabledSource returns the source of the enabled setting
func (s *SettingsStore) GetCategorySyncEnabledSource() string {
	_, src := s.resolve(entities.SettingKeyCategorySyncEnabled, EnvCategorySyncEnabled, "false")
	return src
}

func (s *SettingsStore) SetCategorySyncEnabled(enabled bool) error {
	return s.repo.SetSetting(entities.SettingKeyCategorySyncEnabled, strconv.FormatBool(enabled))
}

// GetCategorySyncSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetCategorySyncSchedule() string {
	v, _ := s.resolve(entities.SettingKeyCategorySyncSchedule, EnvCategorySyncSchedule, DefaultCategorySyncSchedule)
	return v
}

func (s *SettingsStore) GetCategorySyncScheduleSource() string {
	_, src := s.resolve(entities.SettingKeyCategorySyncSchedule, EnvCategorySyncSchedule, DefaultCategorySyncSchedule)
	return src
}

// SetCategorySyncSchedule validates and saves the schedule to database
func (s *SettingsStore) SetCategorySyncSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return s.repo.SetSetting(entities.SettingKeyCategorySyncSchedule, schedule)
}

// GetCategorySyncConfig returns the effective configuration
func (s *SettingsStore) GetCategorySyncConfig() CategorySyncConfig {
	return CategorySyncConfig{
		Enabled:  s.GetCategorySyncEnabled(),
		Schedule: s.GetCategorySyncSchedule(),
	}
}

// GetCategorySyncConfigInfo returns the configuration with source information
func (s *SettingsStore) GetCategorySyncConfigInfo() CategorySyncConfigInfo {
	schedule := s.GetCategorySyncSchedule()
	return CategorySyncConfigInfo{
		Enabled:             s.GetCategorySyncEnabled(),
		EnabledSource:       s.GetCategorySyncEnabledSource(),
		Schedule:            schedule,
		ScheduleSource:      s.GetCategorySyncScheduleSource(),
		ScheduleDescription: GetCronDescription(schedule),
	}
}

// GetCategorySyncStatus returns the last sync status
func (s *SettingsStore) GetCategorySyncStatus() CategorySyncStatus {
	status := CategorySyncStatus{
		Status:  s.stored(entities.SettingKeyCategorySyncLastStatus),
		Message: s.stored(entities.SettingKeyCategorySyncLastMessage),
	}
	if v := s.stored(entities.SettingKeyCategorySyncLastAt); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastSyncAt = &ts
		}
	}
	return status
}

// SetCategorySyncStatus records the outcome of a sync run
func (s *SettingsStore) SetCategorySyncStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyCategorySyncLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyCategorySyncLastStatus:  status,
		entities.SettingKeyCategorySyncLastMessage: message,
	})
}

// ClearCategorySyncSettings clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearCategorySyncSettings() error {
	return s.clear(entities.SettingKeyCategorySyncEnabled, entities.SettingKeyCategorySyncSchedule)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 */12 * * *":
		return "Every 12 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 4 * * *":
		return "Daily at 04:00"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next sync will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
