/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// GuideRun records one guide generation.
type GuideRun struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TargetDate string    `gorm:"type:varchar(10);index;not null" json:"target_date"` // YYYY-MM-DD
	Timezone   string    `gorm:"type:varchar(64)" json:"timezone"`
	Source     string    `gorm:"type:varchar(1024)" json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Channels          int `json:"channels"`
	Generic           int `json:"generic"`
	Event             int `json:"event"`
	EventWithTime     int `json:"event_with_time"`
	EventTBA          int `json:"event_tba"`
	EventWrongDate    int `json:"event_wrong_date"`
	Ambiguous         int `json:"ambiguous"`
	Unmatched         int `json:"unmatched"`
	Findings          int `json:"findings"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	VODSkipped        int `json:"vod_skipped"`
	InvalidURLs       int `json:"invalid_urls"`

	Audits []ChannelAudit `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"audits,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (GuideRun) TableName() string {
	return "guide_runs"
}

// ChannelAudit is the per-channel trace of a guide run.
type ChannelAudit struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	RunID string `gorm:"type:varchar(36);index;not null" json:"run_id"`

	ChannelID   string `gorm:"type:varchar(255);index" json:"channel_id"`
	TvgID       string `gorm:"type:varchar(255)" json:"tvg_id"`
	TvgName     string `gorm:"type:varchar(512)" json:"tvg_name"`
	DisplayName string `gorm:"type:varchar(512)" json:"display_name"`
	GroupTitle  string `gorm:"type:varchar(255)" json:"group_title"`
	TvgLogo     string `gorm:"type:varchar(1024)" json:"tvg_logo"`
	URL         string `gorm:"type:varchar(2048)" json:"url"`

	MatchedFamily  string `gorm:"type:varchar(64);index" json:"matched_family"`
	Classification string `gorm:"type:varchar(16)" json:"classification"`
	Outcome        string `gorm:"type:varchar(32);index" json:"outcome"`
	Payload        string `gorm:"type:varchar(512)" json:"payload"`
	ShellEnd       int    `json:"shell_end"`
	Tokens         string `gorm:"type:varchar(512)" json:"tokens"`   // comma joined
	Warnings       string `gorm:"type:varchar(255)" json:"warnings"` // comma joined

	HasTime          bool       `json:"has_time"`
	EventStart       *time.Time `json:"event_start,omitempty"`
	EventDurationMin int        `json:"event_duration_min"`
	Findings         int        `json:"findings"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (ChannelAudit) TableName() string {
	return "channel_audits"
}
