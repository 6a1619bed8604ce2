/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/slotguide/internal/models"
)

// ErrRunNotFound is returned when a guide run does not exist.
var ErrRunNotFound = errors.New("guide run not found")

const insertBatch = 200

// Store persists guide runs and their channel audits.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewStore creates an audit store.
func NewStore(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// SaveRun stores run and its audits in one transaction. An empty ID is
// filled with a new UUID.
func (s *Store) SaveRun(ctx context.Context, run *models.GuideRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	for i := range run.Audits {
		run.Audits[i].RunID = run.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Audits").Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		if len(run.Audits) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(run.Audits, insertBatch).Error; err != nil {
			return fmt.Errorf("create channel audits: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("id", run.ID).
		Str("target_date", run.TargetDate).
		Int("audits", len(run.Audits)).
		Msg("guide run recorded")
	return nil
}

// RecentRuns lists runs, most recent first, without their audits.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.GuideRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.GuideRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Run loads one run with its audits ordered by channel id.
func (s *Store) Run(ctx context.Context, id string) (*models.GuideRun, error) {
	var run models.GuideRun
	err := s.db.WithContext(ctx).
		Preload("Audits", func(db *gorm.DB) *gorm.DB { return db.Order("channel_id ASC") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
