package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/azoai/botadmin/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	opGetStatus      = "store.get_bot_status"
	opUpsertStatus   = "store.upsert_bot_status"
	opListChangeLogs = "store.list_changelogs"
	opListUpdateLogs = "store.list_updatelogs"

	// BotStatusTable and BotStatusKeyColumn name the realtime channel the
	// status monitor subscribes to.
	BotStatusTable     = "bot_status"
	BotStatusKeyColumn = "session_id"
)

// GetBotStatus fetches the singleton status row for the session. An absent
// row is not an error: the bot has simply never reported, which reads as
// offline.
func (s *Store) GetBotStatus(ctx context.Context, sessionID string) (BotStatus, bool, error) {
	var status BotStatus
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BotStatus{SessionID: sessionID}, false, nil
	}
	if err != nil {
		s.logError(opGetStatus, "query_failed", err, zap.String("session_id", sessionID))
		return BotStatus{}, false, newStoreError(opGetStatus, "query_failed", err)
	}
	return status, true, nil
}

// UpsertBotStatus replaces the whole status row for its session and publishes
// the new row on the realtime channel. Partial merges are deliberately not
// supported; the bot owns every field.
func (s *Store) UpsertBotStatus(ctx context.Context, status BotStatus) (BotStatus, error) {
	status.SessionID = strings.TrimSpace(status.SessionID)
	if status.SessionID == "" {
		return BotStatus{}, newStoreError(opUpsertStatus, "invalid_input", ErrInvalidRow)
	}
	status.UpdatedAt = s.clock().UTC()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(&status).Error
	if err != nil {
		s.logError(opUpsertStatus, "upsert_failed", err, zap.String("session_id", status.SessionID))
		return BotStatus{}, newStoreError(opUpsertStatus, "upsert_failed", err)
	}

	if s.publisher != nil {
		row, err := json.Marshal(status)
		if err != nil {
			s.logError(opUpsertStatus, "row_encode_failed", err, zap.String("session_id", status.SessionID))
		} else {
			s.publisher.Publish(realtime.Event{
				Table:     BotStatusTable,
				Column:    BotStatusKeyColumn,
				Value:     status.SessionID,
				Row:       row,
				Timestamp: s.clock().UTC(),
			})
		}
	}
	return status, nil
}

// ListChangeLogs returns the latest release notes, newest first.
func (s *Store) ListChangeLogs(ctx context.Context, limit int) ([]ChangeLog, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []ChangeLog
	if err := query.Find(&logs).Error; err != nil {
		s.logError(opListChangeLogs, "query_failed", err)
		return nil, newStoreError(opListChangeLogs, "query_failed", err)
	}
	return logs, nil
}

// ListUpdateLogs returns the latest operational events, newest first.
func (s *Store) ListUpdateLogs(ctx context.Context, limit int) ([]UpdateLog, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []UpdateLog
	if err := query.Find(&logs).Error; err != nil {
		s.logError(opListUpdateLogs, "query_failed", err)
		return nil, newStoreError(opListUpdateLogs, "query_failed", err)
	}
	return logs, nil
}
