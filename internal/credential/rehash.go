package credential

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
)

// RehashOptions selects which records Rehash converts.
type RehashOptions struct {
	// Targets are the plaintext values to convert. Ignored when AllPlaintext is set.
	Targets      []string
	AllPlaintext bool
	DryRun       bool
}

// RehashReport summarizes a Rehash run.
type RehashReport struct {
	Scanned   int
	Converted int
	Failed    int
}

// Rehash replaces plaintext passwords stored in collection with bcrypt hashes.
// It runs across every tenant.
func Rehash(ctx context.Context, s store.Store, collection model.Collection, opts RehashOptions, logger *zap.Logger) (RehashReport, error) {
	var report RehashReport
	if collection.PasswordField == "" {
		return report, apperror.Validation("", "a coleção %s não possui campo de senha", collection.Name)
	}
	if !opts.AllPlaintext && len(opts.Targets) == 0 {
		return report, apperror.Validation("target", "informe --target ou --all-plaintext")
	}

	docs, err := s.Find(ctx, collection.Name, nil, store.FindOptions{})
	if err != nil {
		return report, apperror.Storage(err)
	}

	for _, doc := range docs {
		report.Scanned++

		v, _ := store.Lookup(doc, collection.PasswordField)
		plain, ok := v.(string)
		if !ok || plain == "" || IsHash(plain) {
			continue
		}
		if !opts.AllPlaintext && !slices.Contains(opts.Targets, plain) {
			continue
		}

		log := logger.With(zap.Any("id", doc[model.FieldID]))
		if opts.DryRun {
			log.Info("Would rehash password")
			report.Converted++
			continue
		}

		hash, err := Hash(plain)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			report.Failed++
			continue
		}

		_, err = s.UpdateOne(ctx, collection.Name,
			store.Filter{model.FieldID: doc[model.FieldID]},
			store.Update{Set: store.Document{collection.PasswordField: hash}})
		if err != nil {
			log.Error("Failed to update password", zap.Error(err))
			report.Failed++
			continue
		}

		log.Info("Password rehashed")
		report.Converted++
	}

	logger.Info("Rehash finished",
		zap.String("collection", collection.Name),
		zap.Int("scanned", report.Scanned),
		zap.Int("converted", report.Converted),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", opts.DryRun))
	return report, nil
}
