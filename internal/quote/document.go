package quote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
	metrics "tinbr-service/prometheus"
)

const (
	fieldDate      = "data"
	fieldValue     = "valor"
	fieldCreatedAt = "criado_em"
)

// DocumentSink keeps quotes in the cotacoes collection of the document store.
type DocumentSink struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewDocumentSink creates a sink storing quotes in the cotacoes collection.
func NewDocumentSink(s store.Store, logger *zap.Logger) *DocumentSink {
	return &DocumentSink{store: s, logger: logger, now: time.Now}
}

// EnsureIndexes backs the one-quote-per-date rule with a unique index.
func (s *DocumentSink) EnsureIndexes(ctx context.Context) error {
	return s.store.EnsureUniqueIndex(ctx, model.Quotes, store.UniqueIndex{
		Name:   "uniq_" + fieldDate,
		Fields: []string{fieldDate},
	})
}

func (s *DocumentSink) SaveIfAbsent(ctx context.Context, q Quote) (bool, error) {
	if err := Validate(q); err != nil {
		return false, err
	}

	exists, err := s.store.Exists(ctx, model.Quotes, store.Filter{fieldDate: q.Data})
	if err != nil {
		return false, apperror.Storage(err)
	}
	if exists {
		s.logger.Info("Quote already stored", zap.String("data", q.Data))
		metrics.RecordQuoteInsert("duplicate")
		return false, nil
	}

	err = s.store.InsertOne(ctx, model.Quotes, store.Document{
		model.FieldID:  uuid.NewString(),
		fieldDate:      q.Data,
		fieldValue:     q.Valor,
		fieldCreatedAt: s.now().UTC(),
	})
	var dup *store.DuplicateKeyError
	if errors.As(err, &dup) {
		metrics.RecordQuoteInsert("duplicate")
		return false, nil
	}
	if err != nil {
		metrics.RecordQuoteInsert("error")
		return false, apperror.Storage(err)
	}

	s.logger.Info("Quote stored", zap.String("data", q.Data), zap.Float64("valor", q.Valor))
	metrics.RecordQuoteInsert("inserted")
	return true, nil
}

func (s *DocumentSink) Latest(ctx context.Context) (Quote, error) {
	quotes, err := s.List(ctx, 1)
	if err != nil {
		return Quote{}, err
	}
	if len(quotes) == 0 {
		return Quote{}, apperror.NotFound("cotação")
	}
	return quotes[0], nil
}

func (s *DocumentSink) List(ctx context.Context, limit int) ([]Quote, error) {
	docs, err := s.store.Find(ctx, model.Quotes, nil, store.FindOptions{
		Sort:  []store.Sort{{Field: fieldDate, Desc: true}},
		Limit: int64(clampLimit(limit)),
	})
	if err != nil {
		return nil, apperror.Storage(err)
	}

	out := make([]Quote, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

func fromDocument(d store.Document) Quote {
	q := Quote{}
	q.Data, _ = d[fieldDate].(string)
	switch v := d[fieldValue].(type) {
	case float64:
		q.Valor = v
	case int64:
		q.Valor = float64(v)
	case int:
		q.Valor = float64(v)
	}
	q.CriadoEm, _ = d[fieldCreatedAt].(time.Time)
	return q
}
