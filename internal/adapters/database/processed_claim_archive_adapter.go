package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	"github.com/zatekoja/claimsledger/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// ProcessedClaimArchiveAdapter implements ProcessedClaimArchive on PostgreSQL
type ProcessedClaimArchiveAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProcessedClaimArchiveAdapter creates a new archive adapter
func NewProcessedClaimArchiveAdapter(client *postgres.Client) repositories.ProcessedClaimArchive {
	return &ProcessedClaimArchiveAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Save inserts or refreshes the archived row for a processed claim
func (a *ProcessedClaimArchiveAdapter) Save(ctx context.Context, claim *entities.ProcessedClaim) error {
	claimDoc, err := json.Marshal(claim.Claim)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal claim snapshot", err)
	}

	denialReasons, err := json.Marshal(claim.DenialReasons)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal denial reasons", err)
	}

	appealReasons, err := json.Marshal(claim.AppealReasons)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal appeal reasons", err)
	}

	finalizedAt := sql.NullTime{Time: claim.FinalizedAt, Valid: !claim.FinalizedAt.IsZero()}
	editedAt := sql.NullTime{Time: claim.EditedAt, Valid: !claim.EditedAt.IsZero()}

	record := goqu.Record{
		"processor":      claim.Processor,
		"sequence":       claim.Sequence,
		"status":         string(claim.Status),
		"claim":          string(claimDoc),
		"denial_reasons": string(denialReasons),
		"appeal_reasons": string(appealReasons),
		"assigned_at":    claim.AssignedAt,
		"finalized_at":   finalizedAt,
		"edited_at":      editedAt,
	}

	query, args, err := a.db.Insert("processed_claims").
		Rows(record).
		OnConflict(goqu.DoUpdate("processor, sequence", goqu.Record{
			"status":         string(claim.Status),
			"claim":          string(claimDoc),
			"denial_reasons": string(denialReasons),
			"appeal_reasons": string(appealReasons),
			"finalized_at":   finalizedAt,
			"edited_at":      editedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to archive processed claim", err)
	}

	return nil
}

// GetBySequence retrieves an archived processed claim
func (a *ProcessedClaimArchiveAdapter) GetBySequence(ctx context.Context, processor string, sequence uint64) (*entities.ProcessedClaim, error) {
	query, args, err := a.db.Select(
		"processor", "sequence", "status", "claim",
		"denial_reasons", "appeal_reasons",
		"assigned_at", "finalized_at", "edited_at",
	).From("processed_claims").
		Where(goqu.Ex{"processor": processor, "sequence": sequence}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	claim, err := a.scanRow(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("archived claim %s/%d not found", processor, sequence))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get archived claim", err)
	}

	return claim, nil
}

// ListByProcessor retrieves archived claims for a processor, newest first
func (a *ProcessedClaimArchiveAdapter) ListByProcessor(ctx context.Context, processor string, limit int) ([]*entities.ProcessedClaim, error) {
	ds := a.db.Select(
		"processor", "sequence", "status", "claim",
		"denial_reasons", "appeal_reasons",
		"assigned_at", "finalized_at", "edited_at",
	).From("processed_claims").
		Where(goqu.Ex{"processor": processor}).
		Order(goqu.I("sequence").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list archived claims", err)
	}
	defer rows.Close()

	var claims []*entities.ProcessedClaim
	for rows.Next() {
		claim, err := a.scanRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan archived claim", err)
		}
		claims = append(claims, claim)
	}

	return claims, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (a *ProcessedClaimArchiveAdapter) scanRow(row rowScanner) (*entities.ProcessedClaim, error) {
	claim := &entities.ProcessedClaim{}
	var status, claimDoc, denialReasons, appealReasons string
	var finalizedAt, editedAt sql.NullTime

	err := row.Scan(
		&claim.Processor,
		&claim.Sequence,
		&status,
		&claimDoc,
		&denialReasons,
		&appealReasons,
		&claim.AssignedAt,
		&finalizedAt,
		&editedAt,
	)
	if err != nil {
		return nil, err
	}

	claim.Status = entities.ProcessedClaimStatus(status)
	if err := json.Unmarshal([]byte(claimDoc), &claim.Claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(denialReasons), &claim.DenialReasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal denial reasons: %w", err)
	}
	if err := json.Unmarshal([]byte(appealReasons), &claim.AppealReasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal appeal reasons: %w", err)
	}
	if finalizedAt.Valid {
		claim.FinalizedAt = finalizedAt.Time
	}
	if editedAt.Valid {
		claim.EditedAt = editedAt.Time
	}

	return claim, nil
}
