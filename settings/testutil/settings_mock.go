package testutil

import (
	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/settings"
)

type SettingsMock struct {
	settings.Settings

	Data map[string]interface{}
}

func (s *SettingsMock) GetString(key string) string {
	val, ok := s.Data[key]

	if !ok {
		return ""
	}
	st, ok := val.(string)

	if !ok {
		return ""
	}
	return st
}

func (s *SettingsMock) GetStringMandatory(key string) string {
	return s.GetString(key)
}

func (s *SettingsMock) GetURL(key string) string {
	return s.GetString(key)
}

func (s *SettingsMock) GetStringSlice(key string) []string {
	val, ok := s.Data[key]

	if !ok {
		return nil
	}
	sl, ok := val.([]string)

	if !ok {
		return nil
	}
	return sl
}

func (s *SettingsMock) GetInt(key string) int {
	val, ok := s.Data[key]

	if !ok {
		return 0
	}
	i, ok := val.(int)

	if !ok {
		return 0
	}
	return i
}

func (s *SettingsMock) GetInt64(key string) int64 {
	return int64(s.GetInt(key))
}

func (s *SettingsMock) GetBool(key string) bool {
	val, ok := s.Data[key]

	if !ok {
		return false
	}
	b, ok := val.(bool)

	if !ok {
		return false
	}
	return b
}

func (s *SettingsMock) GetAmount(key string) arc.Amount {
	val, ok := s.Data[key]

	if !ok {
		return arc.Amount(0)
	}

	a, ok := val.(arc.Amount)

	if !ok {
		return arc.Amount(0)
	}
	return a
}
