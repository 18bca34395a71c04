// Package quote stores daily exchange-rate quotes, at most one per date.
package quote

import (
	"context"
	"time"

	"tinbr-service/internal/apperror"
)

const DateLayout = "2006-01-02"

// Quote is one daily price.
type Quote struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	Data     string    `json:"data" gorm:"column:data;size:10;not null;uniqueIndex:uniq_data"`
	Valor    float64   `json:"valor" gorm:"column:valor;not null"`
	CriadoEm time.Time `json:"criado_em" gorm:"column:criado_em"`
}

func (Quote) TableName() string {
	return "cotacoes"
}

// Sink is implemented by every quote backend.
type Sink interface {
	// SaveIfAbsent inserts q unless a quote for q.Data exists, and reports whether it inserted.
	SaveIfAbsent(ctx context.Context, q Quote) (bool, error)
	// Latest returns the quote with the most recent date.
	Latest(ctx context.Context) (Quote, error)
	// List returns up to limit quotes, newest first.
	List(ctx context.Context, limit int) ([]Quote, error)
}

// Validate checks the date format and that the rate is positive.
func Validate(q Quote) error {
	if _, err := time.Parse(DateLayout, q.Data); err != nil {
		return apperror.Validation("data", "data deve estar no formato AAAA-MM-DD")
	}
	if q.Valor <= 0 {
		return apperror.Validation("valor", "valor deve ser maior que zero")
	}
	return nil
}

const maxList = 1000

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxList {
		return maxList
	}
	return limit
}
