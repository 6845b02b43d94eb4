package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/utils"
	"gorm.io/gorm"
)

const (
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
)

// Activity is one admin mutation that the backend accepted.
type Activity struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	ReferenceType string    `gorm:"size:64;index" json:"reference_type"`
	ReferenceID   string    `gorm:"size:64;index" json:"reference_id"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text" json:"description"`
	UserEmail     string    `gorm:"size:255;index" json:"user_email"`
	CorrelationID string    `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewActivity struct {
	ActionType    string
	ReferenceType string
	ReferenceID   string
	Before        interface{}
	After         interface{}
	Description   string
}

// ActivityRecorder is what handlers call after a successful mutation.
type ActivityRecorder interface {
	Record(ctx context.Context, input NewActivity) error
	Latest(ctx context.Context, limit int) ([]Activity, error)
}

type gormActivityRecorder struct {
	db *gorm.DB
}

// NewActivityRecorder returns a recorder backed by db, or a no-op recorder
// when no database is configured.
func NewActivityRecorder(db *gorm.DB) ActivityRecorder {
	if db == nil {
		return NopActivityRecorder{}
	}
	return &gormActivityRecorder{db: db}
}

func (r *gormActivityRecorder) Record(ctx context.Context, input NewActivity) error {
	activity := Activity{
		ActionType:    input.ActionType,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Description:   input.Description,
	}
	if input.Before != nil {
		b, _ := json.Marshal(input.Before)
		activity.Before = string(b)
	}
	if input.After != nil {
		a, _ := json.Marshal(input.After)
		activity.After = string(a)
	}
	activity.UserEmail, _ = utils.GetEmailFromContext(ctx)
	activity.CorrelationID, _ = utils.GetCorrelationIdFromContext(ctx)

	err := r.db.WithContext(ctx).Create(&activity).Error
	if err != nil {
		config.LogError(config.GetLogger(), "Activity", "Record", input.ReferenceType, activity.ReferenceID, err)
	}
	return err
}

func (r *gormActivityRecorder) Latest(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var results []Activity
	err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

type NopActivityRecorder struct{}

func (NopActivityRecorder) Record(context.Context, NewActivity) error { return nil }

func (NopActivityRecorder) Latest(context.Context, int) ([]Activity, error) {
	return []Activity{}, nil
}
