// Package store persists evaluation runs and the shared leaderboard in
// DuckDB. Run payloads are stored as JSON documents; leaderboard rows are
// one-per-model and upserted on re-evaluation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"mirage/internal/result"
)

// Store wraps a DuckDB database holding runs and the leaderboard.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == ":memory:" {
		dsn = ""
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a complete evaluation run. The full run document is
// stored as JSON alongside the columns queries filter on.
func (s *Store) SaveRun(ctx context.Context, run result.EvaluationRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, model_id, model_name, dataset_version, seed, overall_score, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ModelCard.ModelID, run.ModelCard.ModelName, run.DatasetVersion,
		run.Seed, run.OverallScore, string(payload), run.Timestamp)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Run loads one persisted run by ID.
func (s *Store) Run(ctx context.Context, runID string) (result.EvaluationRun, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload::VARCHAR FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return result.EvaluationRun{}, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return result.EvaluationRun{}, fmt.Errorf("query run: %w", err)
	}
	var run result.EvaluationRun
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return result.EvaluationRun{}, fmt.Errorf("decode run payload: %w", err)
	}
	return run, nil
}

// BaselineScores returns the overall scores of prior runs, excluding the
// given model so a model is never ranked against itself. Ordered by run
// time for stable results.
func (s *Store) BaselineScores(ctx context.Context, excludeModelID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT overall_score FROM runs WHERE model_id <> ? ORDER BY created_at, run_id`,
		excludeModelID)
	if err != nil {
		return nil, fmt.Errorf("query baseline scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scan baseline score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// UpsertLeaderboard inserts or replaces the leaderboard row for the
// entry's model. Rank is ignored on write; it is assigned on read.
func (s *Store) UpsertLeaderboard(ctx context.Context, entry result.LeaderboardEntry) error {
	trackScores, err := json.Marshal(entry.TrackScores)
	if err != nil {
		return fmt.Errorf("marshal track scores: %w", err)
	}
	axisScores, err := json.Marshal(entry.AxisScores)
	if err != nil {
		return fmt.Errorf("marshal axis scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (entry_id, model_id, model_name, overall_score, percentile, track_scores, axis_scores, avg_latency, avg_cost, evaluated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (model_id) DO UPDATE SET
		   entry_id = excluded.entry_id,
		   model_name = excluded.model_name,
		   overall_score = excluded.overall_score,
		   percentile = excluded.percentile,
		   track_scores = excluded.track_scores,
		   axis_scores = excluded.axis_scores,
		   avg_latency = excluded.avg_latency,
		   avg_cost = excluded.avg_cost,
		   evaluated_at = excluded.evaluated_at`,
		uuid.NewString(), entry.ModelID, entry.ModelName, entry.OverallScore, entry.Percentile,
		string(trackScores), string(axisScores), entry.AvgLatency, entry.AvgCost, entry.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("upsert leaderboard: %w", err)
	}
	return nil
}

// Leaderboard returns all entries ranked by overall score descending, ties
// broken by earlier evaluation time. Ranks are 1-based.
func (s *Store) Leaderboard(ctx context.Context) ([]result.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model_id, model_name, overall_score, percentile, track_scores::VARCHAR, axis_scores::VARCHAR, avg_latency, avg_cost, evaluated_at
		 FROM leaderboard
		 ORDER BY overall_score DESC, evaluated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []result.LeaderboardEntry
	for rows.Next() {
		var entry result.LeaderboardEntry
		var trackScores, axisScores string
		var evaluatedAt time.Time
		if err := rows.Scan(&entry.ModelID, &entry.ModelName, &entry.OverallScore, &entry.Percentile,
			&trackScores, &axisScores, &entry.AvgLatency, &entry.AvgCost, &evaluatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		if err := json.Unmarshal([]byte(trackScores), &entry.TrackScores); err != nil {
			return nil, fmt.Errorf("decode track scores: %w", err)
		}
		if err := json.Unmarshal([]byte(axisScores), &entry.AxisScores); err != nil {
			return nil, fmt.Errorf("decode axis scores: %w", err)
		}
		entry.EvaluatedAt = evaluatedAt
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
