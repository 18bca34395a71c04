package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tinbr-service/internal/apperror"
	metrics "tinbr-service/prometheus"
)

// GormSink keeps quotes in a SQL table, postgres in production or sqlite locally.
type GormSink struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewGormSink migrates the cotacoes table and returns the sink.
func NewGormSink(db *gorm.DB, logger *zap.Logger) (*GormSink, error) {
	if err := db.AutoMigrate(&Quote{}); err != nil {
		return nil, fmt.Errorf("failed to run quote migrations: %w", err)
	}
	return &GormSink{db: db, logger: logger, now: time.Now}, nil
}

func (s *GormSink) SaveIfAbsent(ctx context.Context, q Quote) (bool, error) {
	if err := Validate(q); err != nil {
		return false, err
	}

	record := Quote{Data: q.Data, Valor: q.Valor, CriadoEm: s.now().UTC()}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "data"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		metrics.RecordQuoteInsert("error")
		return false, apperror.Storage(result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.Info("Quote already stored", zap.String("data", q.Data))
		metrics.RecordQuoteInsert("duplicate")
		return false, nil
	}

	s.logger.Info("Quote stored", zap.String("data", q.Data), zap.Float64("valor", q.Valor))
	metrics.RecordQuoteInsert("inserted")
	return true, nil
}

func (s *GormSink) Latest(ctx context.Context) (Quote, error) {
	var q Quote
	err := s.db.WithContext(ctx).Order("data desc").First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Quote{}, apperror.NotFound("cotação")
	}
	if err != nil {
		return Quote{}, apperror.Storage(err)
	}
	return q, nil
}

func (s *GormSink) List(ctx context.Context, limit int) ([]Quote, error) {
	var quotes []Quote
	err := s.db.WithContext(ctx).Order("data desc").Limit(clampLimit(limit)).Find(&quotes).Error
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return quotes, nil
}
