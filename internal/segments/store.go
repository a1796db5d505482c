package segments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store provides database operations for saved segments. Segments are
// append-only: create, list, and get — no update or delete.
type Store struct {
	db *sql.DB
}

// NewStore creates a new segment store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create persists a new saved segment. Input validation happens before any
// store access, so an empty name never produces a round-trip. Duplicate
// names are permitted.
func (s *Store) Create(ctx context.Context, in CreateSegmentInput) (*SavedSegment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seg := &SavedSegment{
		ID:             uuid.New(),
		Name:           in.Name,
		Description:    in.Description,
		FilterCriteria: in.FilterCriteria,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	criteriaJSON, err := json.Marshal(seg.FilterCriteria)
	if err != nil {
		return nil, &StoreError{Op: "marshal criteria", Err: err}
	}

	query := `
		INSERT INTO saved_segments (
			id, name, description, filter_criteria, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		seg.ID, seg.Name, seg.Description, criteriaJSON, seg.CreatedBy,
		seg.CreatedAt, seg.UpdatedAt)
	if err != nil {
		return nil, &StoreError{Op: "insert segment", Err: err}
	}

	return seg, nil
}

// List returns all saved segments, newest first.
func (s *Store) List(ctx context.Context) ([]*SavedSegment, error) {
	query := `
		SELECT id, name, COALESCE(description,''), filter_criteria,
			COALESCE(created_by,''), created_at, updated_at
		FROM saved_segments
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "list segments", Err: err}
	}
	defer rows.Close()

	var out []*SavedSegment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, &StoreError{Op: "scan segment", Err: err}
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list segments", Err: err}
	}

	return out, nil
}

// Get retrieves a segment by ID for activation. Returns ErrNotFound when the
// ID does not exist.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*SavedSegment, error) {
	query := `
		SELECT id, name, COALESCE(description,''), filter_criteria,
			COALESCE(created_by,''), created_at, updated_at
		FROM saved_segments
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	seg, err := scanSegment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get segment", Err: err}
	}

	return seg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegment(r rowScanner) (*SavedSegment, error) {
	seg := &SavedSegment{}
	var criteriaJSON []byte
	err := r.Scan(&seg.ID, &seg.Name, &seg.Description, &criteriaJSON,
		&seg.CreatedBy, &seg.CreatedAt, &seg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &seg.FilterCriteria); err != nil {
			return nil, fmt.Errorf("unmarshal criteria: %w", err)
		}
	}
	return seg, nil
}
