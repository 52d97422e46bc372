package clausesync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzzysan/Klauzule-zakazane/internal/analysis"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/vector"
)

// ClauseStore is the slice of clause storage the reconciler writes through.
type ClauseStore interface {
	ListClauseTexts(ctx context.Context) (map[string]struct{}, error)
	CountClauses(ctx context.Context) (int, error)
	InsertClause(ctx context.Context, c models.ClauseRecord, embeddingLiteral string) error
	GetOrCreateLegalReference(ctx context.Context, ref models.LegalReference) (string, error)
	LinkClauseReference(ctx context.Context, clauseID, referenceID string) error
}

// Reconciler imports clauses the app database does not have yet from the
// court register. It never updates or removes existing records, so a run
// against an unchanged source is a no-op.
type Reconciler struct {
	source SourceAdapter
	store  ClauseStore
	embed  analysis.Embedder
	logger *zap.Logger
}

func NewReconciler(source SourceAdapter, store ClauseStore, embed analysis.Embedder, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{source: source, store: store, embed: embed, logger: logger}
}

func (r *Reconciler) Sync(ctx context.Context) (models.SyncStats, error) {
	var stats models.SyncStats

	sourceClauses, err := r.source.FetchSourceClauses(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch source clauses: %w", err)
	}
	stats.TotalSource = len(sourceClauses)

	existing, err := r.store.ListClauseTexts(ctx)
	if err != nil {
		return stats, fmt.Errorf("list existing clauses: %w", err)
	}

	for _, src := range sourceClauses {
		text := strings.TrimSpace(src.Text)
		if text == "" {
			stats.Skipped++
			continue
		}
		// Dedup is on exact stripped text. A case or diacritic variant is
		// a new record; collapsing those is a judgement call the register
		// operator has to make, not the importer.
		if _, ok := existing[text]; ok {
			stats.Skipped++
			continue
		}
		if err := r.importClause(ctx, src, text, normalizeText(text)); err != nil {
			r.logger.Warn("clause import failed",
				zap.String("decision_ref", src.DecisionRef),
				zap.Error(err))
			stats.Errors++
			continue
		}
		existing[text] = struct{}{}
		stats.Added++
	}

	total, err := r.store.CountClauses(ctx)
	if err != nil {
		return stats, fmt.Errorf("count app clauses: %w", err)
	}
	stats.TotalApp = total

	r.logger.Info("clause sync finished",
		zap.Int("added", stats.Added),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors),
		zap.Int("total_source", stats.TotalSource),
		zap.Int("total_app", stats.TotalApp))
	return stats, nil
}

func (r *Reconciler) importClause(ctx context.Context, src SourceClause, text, normalized string) error {
	embedding, err := r.embed.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embed clause: %w", err)
	}

	clause := models.ClauseRecord{
		ClauseID:       uuid.NewString(),
		ClauseText:     text,
		NormalizedText: normalized,
		RiskLevel:      models.RiskHigh,
		Language:       "pl",
		Source:         "imported",
		Notes:          buildNotes(src),
		Tags:           buildTags(src),
		IsActive:       true,
	}
	if err := r.store.InsertClause(ctx, clause, vector.ToLiteral(embedding)); err != nil {
		return err
	}

	ref := strings.TrimSpace(src.DecisionRef)
	if ref == "" {
		return nil
	}
	refID, err := r.store.GetOrCreateLegalReference(ctx, models.LegalReference{
		ReferenceID:   uuid.NewString(),
		ArticleCode:   ref,
		ArticleTitle:  fmt.Sprintf("Wyrok sądowy - %s", ref),
		Description:   fmt.Sprintf("Klauzula uznana za niedozwoloną wyrokiem o sygnaturze %s", ref),
		LawName:       "Orzeczenie Sądu Ochrony Konkurencji i Konsumentów",
		Jurisdiction:  "PL",
		EffectiveDate: src.DecisionDate,
	})
	if err != nil {
		return err
	}
	return r.store.LinkClauseReference(ctx, clause.ClauseID, refID)
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func buildTags(src SourceClause) []string {
	var tags []string
	if src.Industry != "" {
		tags = append(tags, "branza:"+src.Industry)
	}
	if src.Issue != "" {
		tags = append(tags, "zagadnienie:"+src.Issue)
	}
	return tags
}

func buildNotes(src SourceClause) string {
	var parts []string
	if src.DecisionNumber != "" {
		parts = append(parts, "Numer: "+src.DecisionNumber)
	}
	if src.Plaintiff != "" {
		parts = append(parts, "Powód: "+src.Plaintiff)
	}
	if src.Defendant != "" {
		parts = append(parts, "Pozwany: "+src.Defendant)
	}
	if src.EntryDate != "" {
		parts = append(parts, "Data wpisu: "+src.EntryDate)
	}
	return strings.Join(parts, " | ")
}
