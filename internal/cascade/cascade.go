// Package cascade propagates an owner's block status to the owner's properties
// and records each transition in the audit log.
package cascade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
	"tinbr-service/internal/tenant"
	metrics "tinbr-service/prometheus"
)

// Result reports the outcome of a block or unblock.
type Result struct {
	OwnerID string       `json:"proprietario_id"`
	Status  model.Status `json:"status"`
	// Affected counts the properties actually modified, which may be fewer than
	// the properties owned.
	Affected int64 `json:"propriedades_afetadas"`
}

// Updater applies owner status transitions to the owner and its properties.
type Updater struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewUpdater creates an Updater on top of s.
func NewUpdater(s store.Store, logger *zap.Logger) *Updater {
	return &Updater{store: s, logger: logger, now: time.Now}
}

// Block marks the owner and every property it owns within the tenant as blocked.
func (u *Updater) Block(ctx context.Context, tenantID, ownerID, reason, actor string) (Result, error) {
	now := u.now().UTC()
	return u.apply(ctx, tenantID, ownerID, transition{
		action: model.AuditBlock,
		status: model.StatusBlocked,
		reason: reason,
		actor:  actor,
		owner: store.Update{Set: store.Document{
			model.FieldStatus:      string(model.StatusBlocked),
			model.FieldBlockReason: reason,
			model.FieldBlockedBy:   actor,
			model.FieldBlockedAt:   now,
			model.FieldUpdatedAt:   now,
		}, Unset: []string{model.FieldUnblockedBy, model.FieldUnblockedAt}},
		properties: store.Update{Set: store.Document{
			model.FieldStatus:      string(model.StatusBlocked),
			model.FieldBlockReason: reason,
			model.FieldUpdatedAt:   now,
		}},
		at: now,
	})
}

// Unblock reverts Block: owner and properties return to active and the block metadata is cleared.
func (u *Updater) Unblock(ctx context.Context, tenantID, ownerID, actor string) (Result, error) {
	now := u.now().UTC()
	return u.apply(ctx, tenantID, ownerID, transition{
		action: model.AuditUnblock,
		status: model.StatusActive,
		actor:  actor,
		owner: store.Update{Set: store.Document{
			model.FieldStatus:      string(model.StatusActive),
			model.FieldUnblockedBy: actor,
			model.FieldUnblockedAt: now,
			model.FieldUpdatedAt:   now,
		}, Unset: []string{model.FieldBlockReason, model.FieldBlockedBy, model.FieldBlockedAt}},
		properties: store.Update{Set: store.Document{
			model.FieldStatus:    string(model.StatusActive),
			model.FieldUpdatedAt: now,
		}, Unset: []string{model.FieldBlockReason}},
		at: now,
	})
}

type transition struct {
	action     model.AuditAction
	status     model.Status
	reason     string
	actor      string
	owner      store.Update
	properties store.Update
	at         time.Time
}

func (u *Updater) apply(ctx context.Context, tenantID, ownerID string, t transition) (Result, error) {
	ownerScope, err := tenant.For(model.MustLookup(model.Owners), tenant.Write, tenantID)
	if err != nil {
		return Result{}, err
	}
	propScope, err := tenant.For(model.MustLookup(model.Properties), tenant.Write, tenantID)
	if err != nil {
		return Result{}, err
	}
	auditScope, err := tenant.For(model.MustLookup(model.AuditLog), tenant.Write, tenantID)
	if err != nil {
		return Result{}, err
	}

	log := u.logger.With(
		zap.String("proprietario_id", ownerID),
		zap.String("cliente_id", tenantID),
		zap.String("acao", string(t.action)))

	var res Result
	err = u.store.WithTransaction(ctx, func(ctx context.Context) error {
		owner, err := u.store.UpdateOne(ctx, model.Owners,
			ownerScope.Filter(map[string]any{model.FieldID: ownerID}), t.owner)
		if err != nil {
			return apperror.Storage(err)
		}
		if owner.Matched == 0 {
			return apperror.NotFound("proprietário")
		}

		props, err := u.store.UpdateMany(ctx, model.Properties,
			propScope.Filter(map[string]any{model.FieldOwnerID: ownerID}), t.properties)
		if err != nil {
			log.Error("Property fan-out failed", zap.Error(err))
			return apperror.Storage(err)
		}

		entry := store.Document{
			model.FieldID:            uuid.NewString(),
			model.FieldOwnerID:       ownerID,
			model.FieldAuditAction:   string(t.action),
			model.FieldAuditReason:   t.reason,
			model.FieldAuditActor:    t.actor,
			model.FieldAuditDate:     t.at,
			model.FieldAuditAffected: props.Modified,
		}
		if auditScope.Bound() {
			entry[model.FieldTenantID] = auditScope.TenantID()
		}
		if err := u.store.InsertOne(ctx, model.AuditLog, entry); err != nil {
			log.Error("Audit append failed", zap.Error(err))
			return apperror.Storage(err)
		}

		res = Result{OwnerID: ownerID, Status: t.status, Affected: props.Modified}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("Owner status cascaded", zap.Int64("propriedades_afetadas", res.Affected))
	metrics.RecordCascade(string(t.action), res.Affected)
	return res, nil
}
