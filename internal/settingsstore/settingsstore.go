package settingsstore

import (
	"strconv"

	"github.com/osonapteka/backoffice/internal/database/settings"
	"github.com/osonapteka/backoffice/internal/entities"
)

// SettingsStore exposes admin-tunable runtime settings. Priority:
// database > configured default. Values saved here survive restarts and
// take effect without redeploying.
type SettingsStore struct {
	repo *settings.Repository

	defaultLowStockThreshold float64
}

func New(repo *settings.Repository, defaultLowStockThreshold float64) *SettingsStore {
	return &SettingsStore{
		repo:                     repo,
		defaultLowStockThreshold: defaultLowStockThreshold,
	}
}

// GetLowStockThreshold returns the stock level at or under which the hourly
// check emits low-stock events. Zero disables the check.
func (s *SettingsStore) GetLowStockThreshold() float64 {
	setting, err := s.repo.Get(entities.SettingKeyLowStockThreshold)
	if err == nil && setting.Value != "" {
		if parsed, err := strconv.ParseFloat(setting.Value, 64); err == nil {
			return parsed
		}
	}
	return s.defaultLowStockThreshold
}

func (s *SettingsStore) SetLowStockThreshold(threshold float64) error {
	return s.repo.Set(entities.SettingKeyLowStockThreshold, strconv.FormatFloat(threshold, 'f', -1, 64))
}

// GetNotificationsEnabled reports whether sync events should reach the
// notification sinks. Defaults to true when unset.
func (s *SettingsStore) GetNotificationsEnabled() bool {
	setting, err := s.repo.Get(entities.SettingKeyNotificationsEnabled)
	if err == nil && setting.Value != "" {
		if parsed, err := strconv.ParseBool(setting.Value); err == nil {
			return parsed
		}
	}
	return true
}

func (s *SettingsStore) SetNotificationsEnabled(enabled bool) error {
	return s.repo.Set(entities.SettingKeyNotificationsEnabled, strconv.FormatBool(enabled))
}
