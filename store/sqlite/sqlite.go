/*
Package sqlite provides a SQLite-backed implementation of the storage layer.

PURPOSE:
  Persists policy versions and approval/allocation records. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY POLICIES:
  Policies are immutable once referenced by a computed allocation. The
  store therefore never updates a policy row; edits create a new version
  row with its own validity window, and CreatePolicy rejects candidates
  whose window overlaps an existing version of the same publication type
  (incentive.ValidateForCreate, called under the write lock).

ATOMIC APPROVALS:
  An approved contribution must never be observed with a status change but
  a missing or mismatched allocation. SaveApproval writes the approval row
  and every per-author allocation row inside one SQL transaction.

KEY TABLES:
  policies:     Versioned policy definitions (config_json holds the
                factory JSON document)
  approvals:    One row per approval event, with the resolved policy ID
                and distribution totals (null for flagged approvals)
  allocations:  Per-author shares belonging to an approval

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, a single writer at a time, better crash
  recovery.

USAGE:
  store, err := sqlite.New("./data/incentives.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - incentive/resolver.go: ValidateForCreate, enforced here at write time
  - api/handlers.go: The approval workflow calling SaveApproval
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
)

// ErrApprovalNotFound is returned when an approval ID has no record.
var ErrApprovalNotFound = errors.New("approval not found")

// Store implements policy and approval persistence using SQLite.
type Store struct {
	db      *sql.DB
	factory *factory.PolicyFactory
	mu      sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewPolicyFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Policy versions (append-only; edits create a new version)
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		publication_type TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policies_type_window
		ON policies(publication_type, valid_from);

	-- Approval events. policy_id/totals are NULL when the engine reported
	-- a non-fatal failure and the approval proceeded flagged for manual
	-- follow-up.
	CREATE TABLE IF NOT EXISTS approvals (
		id TEXT PRIMARY KEY,
		contribution_id TEXT NOT NULL,
		publication_type TEXT NOT NULL,
		reference_date TEXT NOT NULL,
		policy_id TEXT REFERENCES policies(id),
		total_computed TEXT,
		total_distributed TEXT,
		total_forfeited TEXT,
		total_points TEXT,
		flagged_reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_approvals_contribution
		ON approvals(contribution_id);

	-- Per-author shares belonging to an approval
	CREATE TABLE IF NOT EXISTS allocations (
		approval_id TEXT NOT NULL REFERENCES approvals(id),
		author_id TEXT NOT NULL,
		incentive_amount TEXT NOT NULL,
		points TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		PRIMARY KEY (approval_id, author_id)
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_author
		ON allocations(author_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POLICIES
// =============================================================================

// CreatePolicy validates the candidate against the existing policy set and
// inserts it as a new immutable version. Overlapping validity windows for
// the same publication type and invalid percentage tables are rejected
// before any write happens.
func (s *Store) CreatePolicy(ctx context.Context, policy *incentive.IncentivePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadPolicies(ctx, "")
	if err != nil {
		return err
	}
	if err := incentive.ValidateForCreate(existing, policy); err != nil {
		return err
	}

	configJSON, err := marshalPolicy(s.factory, policy)
	if err != nil {
		return err
	}

	var validTo any
	if policy.ValidTo != nil {
		validTo = policy.ValidTo.UTC().Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policies (id, name, publication_type, valid_from, valid_to, config_json, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(policy.ID), policy.Name, string(policy.PublicationType),
		policy.ValidFrom.UTC().Format(time.RFC3339), validTo,
		configJSON, policy.Version,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetPolicy retrieves one policy version by ID.
func (s *Store) GetPolicy(ctx context.Context, id incentive.PolicyID) (*incentive.IncentivePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM policies WHERE id = ?", string(id))

	var configJSON string
	if err := row.Scan(&configJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, incentive.ErrPolicyNotFound
		}
		return nil, err
	}
	return s.factory.ParsePolicy(configJSON)
}

// ListPolicies returns every stored policy version. Pass an empty type to
// list all publication types.
func (s *Store) ListPolicies(ctx context.Context, pubType incentive.PublicationType) ([]*incentive.IncentivePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadPolicies(ctx, pubType)
}

// ResolvePolicy loads the policy set and resolves the active version for a
// publication type and reference date.
func (s *Store) ResolvePolicy(ctx context.Context, pubType incentive.PublicationType, referenceDate time.Time) (*incentive.IncentivePolicy, error) {
	policies, err := s.ListPolicies(ctx, pubType)
	if err != nil {
		return nil, err
	}
	return incentive.Resolve(policies, pubType, referenceDate)
}

func (s *Store) loadPolicies(ctx context.Context, pubType incentive.PublicationType) ([]*incentive.IncentivePolicy, error) {
	query := "SELECT config_json FROM policies"
	var args []any
	if pubType != "" {
		query += " WHERE publication_type = ?"
		args = append(args, string(pubType))
	}
	query += " ORDER BY valid_from"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*incentive.IncentivePolicy
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		policy, err := s.factory.ParsePolicy(configJSON)
		if err != nil {
			return nil, fmt.Errorf("corrupt policy config: %w", err)
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

func marshalPolicy(f *factory.PolicyFactory, policy *incentive.IncentivePolicy) (string, error) {
	pj := f.ToJSON(policy)
	// Round-trip through the factory so a stored config always parses.
	if _, err := f.FromJSON(pj); err != nil {
		return "", err
	}
	data, err := json.Marshal(pj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// APPROVALS
// =============================================================================

// ApprovalRecord is one approval event with its allocation outcome. Result
// is nil when the engine reported a non-fatal failure and the approval was
// flagged for manual follow-up.
type ApprovalRecord struct {
	ID              string
	ContributionID  incentive.ContributionID
	PublicationType incentive.PublicationType
	ReferenceDate   time.Time
	PolicyID        incentive.PolicyID
	Result          *incentive.AllocationResult
	FlaggedReason   string
	CreatedAt       time.Time
}

// SaveApproval persists the approval event and its per-author allocations
// as a single atomic unit. Either every row lands or none does, so an
// approved record is never observed without its allocation.
func (s *Store) SaveApproval(ctx context.Context, record ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var policyID any
	if record.PolicyID != "" {
		policyID = string(record.PolicyID)
	}
	var totalComputed, totalDistributed, totalForfeited, totalPoints any
	if record.Result != nil {
		totalComputed = record.Result.TotalComputed.String()
		totalDistributed = record.Result.TotalDistributed.String()
		totalForfeited = record.Result.TotalForfeited.String()
		totalPoints = record.Result.TotalPoints.String()
	}
	var flagged any
	if record.FlaggedReason != "" {
		flagged = record.FlaggedReason
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO approvals (id, contribution_id, publication_type, reference_date,
			policy_id, total_computed, total_distributed, total_forfeited, total_points,
			flagged_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, string(record.ContributionID), string(record.PublicationType),
		record.ReferenceDate.UTC().Format(time.RFC3339),
		policyID, totalComputed, totalDistributed, totalForfeited, totalPoints,
		flagged, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	if record.Result != nil {
		for i, alloc := range record.Result.Allocations {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO allocations (approval_id, author_id, incentive_amount, points, ordinal)
				VALUES (?, ?, ?, ?, ?)`,
				record.ID, string(alloc.AuthorID),
				alloc.IncentiveAmount.String(), alloc.Points.String(), i,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetApproval retrieves an approval with its allocations.
func (s *Store) GetApproval(ctx context.Context, id string) (*ApprovalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contribution_id, publication_type, reference_date,
			policy_id, total_computed, total_distributed, total_forfeited, total_points,
			flagged_reason, created_at
		FROM approvals WHERE id = ?`, id)

	var record ApprovalRecord
	var referenceDate, createdAt string
	var policyID, totalComputed, totalDistributed, totalForfeited, totalPoints, flagged sql.NullString
	err := row.Scan(&record.ID, &record.ContributionID, &record.PublicationType,
		&referenceDate, &policyID, &totalComputed, &totalDistributed,
		&totalForfeited, &totalPoints, &flagged, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApprovalNotFound
	}
	if err != nil {
		return nil, err
	}

	record.ReferenceDate, _ = time.Parse(time.RFC3339, referenceDate)
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	record.PolicyID = incentive.PolicyID(policyID.String)
	record.FlaggedReason = flagged.String

	if totalComputed.Valid {
		result := &incentive.AllocationResult{
			TotalComputed:    mustDecimal(totalComputed.String),
			TotalDistributed: mustDecimal(totalDistributed.String),
			TotalForfeited:   mustDecimal(totalForfeited.String),
			TotalPoints:      mustDecimal(totalPoints.String),
		}
		allocations, err := s.loadAllocations(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Allocations = allocations
		for _, a := range allocations {
			result.TotalPointsDistributed = result.TotalPointsDistributed.Add(a.Points)
		}
		record.Result = result
	}

	return &record, nil
}

// ListApprovalsByContribution returns the approval history for one
// contribution, newest first.
func (s *Store) ListApprovalsByContribution(ctx context.Context, contributionID incentive.ContributionID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM approvals WHERE contribution_id = ? ORDER BY created_at DESC",
		string(contributionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) loadAllocations(ctx context.Context, approvalID string) ([]incentive.AuthorAllocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT author_id, incentive_amount, points
		FROM allocations WHERE approval_id = ? ORDER BY ordinal`, approvalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []incentive.AuthorAllocation
	for rows.Next() {
		var authorID, amount, points string
		if err := rows.Scan(&authorID, &amount, &points); err != nil {
			return nil, err
		}
		allocations = append(allocations, incentive.AuthorAllocation{
			AuthorID:        incentive.AuthorID(authorID),
			IncentiveAmount: mustDecimal(amount),
			Points:          mustDecimal(points),
		})
	}
	return allocations, rows.Err()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
