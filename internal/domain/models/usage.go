package models

import "fmt"

// UsageRecord counts provider requests for one (date, provider) pair. The
// counter only ever increases; a new day is a new record.
type UsageRecord struct {
	ID       string `bson:"_id" json:"id"`
	Date     string `bson:"date" json:"date"`
	Provider string `bson:"provider" json:"provider"`
	Requests int    `bson:"requests" json:"requests"`
}

// UsageKey builds the storage id for a (date, provider) pair.
func UsageKey(date, provider string) string {
	return fmt.Sprintf("%s_%s", date, provider)
}

// WarningLevel grades how close the day's usage is to the daily limit.
type WarningLevel string

const (
	WarnNone     WarningLevel = "none"
	WarnWarning  WarningLevel = "warning"
	WarnCritical WarningLevel = "critical"
)

// UsageStatus is the admission decision returned before a live provider call.
type UsageStatus struct {
	Allowed      bool         `json:"allowed"`
	WarningLevel WarningLevel `json:"warning_level"`
	Current      int          `json:"current"`
	Limit        int          `json:"limit"`
}
