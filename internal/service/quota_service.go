package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

type QuotaService struct {
	tx       ports.Transactor
	files    ports.FileRepository
	users    ports.UserRepository
	capacity int64
	metrics  *metrics.Metrics
}

func NewQuotaService(tx ports.Transactor, files ports.FileRepository, users ports.UserRepository, capacity int64, m *metrics.Metrics) *QuotaService {
	return &QuotaService{
		tx:       tx,
		files:    files,
		users:    users,
		capacity: capacity,
		metrics:  m,
	}
}

// QuotaFor : floor(capacity * 0.9 / activeUsers), без пользователей квота нулевая
func QuotaFor(capacity int64, activeUsers int) int64 {
	if activeUsers <= 0 || capacity <= 0 {
		return 0
	}
	d := int64(activeUsers) * 10
	return capacity/d*9 + capacity%d*9/d
}

// UsagePercentage : min(100, used/quota*100), 0 при нулевой квоте
func UsagePercentage(used, quota int64) float64 {
	if quota <= 0 {
		return 0
	}
	pct := float64(used) / float64(quota) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// CheckAdmission : проверка перед записью, вызывается внутри транзакции загрузки после LockOwner
func (s *QuotaService) CheckAdmission(ctx context.Context, exec sqlx.ExtContext, ownerID string, incoming int64) error {
	used, err := s.files.SumActiveSize(ctx, exec, ownerID)
	if err != nil {
		return util.LogError("[QuotaService] не удалось посчитать занятое место", err)
	}
	activeUsers, err := s.users.CountActive(ctx, exec)
	if err != nil {
		return util.LogError("[QuotaService] не удалось посчитать пользователей", err)
	}

	quota := QuotaFor(s.capacity, activeUsers)
	if used+incoming > quota {
		s.metrics.QuotaRejected()
		return fmt.Errorf("%w: занято %s, загружается %s, квота %s", model.ErrQuotaExceeded,
			model.HumanSize(used), model.HumanSize(incoming), model.HumanSize(quota))
	}
	return nil
}

// Stats : использование хранилища пользователем
func (s *QuotaService) Stats(ctx context.Context, userID string) (*model.UsageStats, error) {
	exec := s.tx.Executor()

	used, err := s.files.SumActiveSize(ctx, exec, userID)
	if err != nil {
		return nil, util.LogError("[QuotaService] не удалось посчитать занятое место", err)
	}
	count, err := s.files.CountActive(ctx, exec, userID)
	if err != nil {
		return nil, util.LogError("[QuotaService] не удалось посчитать файлы", err)
	}
	activeUsers, err := s.users.CountActive(ctx, exec)
	if err != nil {
		return nil, util.LogError("[QuotaService] не удалось посчитать пользователей", err)
	}

	quota := QuotaFor(s.capacity, activeUsers)
	return &model.UsageStats{
		UsedBytes:       used,
		QuotaBytes:      quota,
		UsagePercentage: UsagePercentage(used, quota),
		ActiveUsers:     activeUsers,
		FileCount:       count,
	}, nil
}
