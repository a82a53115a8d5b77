package services

import (
	"time"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitSystemLogger wires the package-level audit writer. Audit writes
// are fire-and-forget; a failed insert never fails the caller.
func InitSystemLogger(db *gorm.DB) {
	auditDB = db
}

func LogInfo(module, action, message string, userID *uint, ip string) {
	writeAudit("info", module, action, message, userID, ip)
}

func LogWarning(module, action, message string, userID *uint, ip string) {
	writeAudit("warning", module, action, message, userID, ip)
}

func LogError(module, action, message string, userID *uint, ip string) {
	writeAudit("error", module, action, message, userID, ip)
}

func writeAudit(level, module, action, message string, userID *uint, ip string) {
	if auditDB == nil {
		return
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		CreatedAt: time.Now(),
	}
	auditDB.Create(entry)
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type SystemLogListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Level    string `form:"level"`
	Module   string `form:"module"`
	Search   string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.SystemLog
	var total int64

	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOldLogs deletes log rows older than retentionDays and returns
// the number of rows removed.
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartLogCleanupScheduler runs the retention cleanup nightly at 03:00.
// The returned cron can be stopped on shutdown.
func StartLogCleanupScheduler(db *gorm.DB, retentionDays int) *cron.Cron {
	service := NewSystemLogService(db)

	c := cron.New()
	c.AddFunc("0 3 * * *", func() {
		deleted, err := service.CleanupOldLogs(retentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("system log cleanup failed")
			return
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("system log cleanup done")
		}
	})
	c.Start()
	return c
}
