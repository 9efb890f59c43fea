package sqlite

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// ReportRepository stores frame reports in SQLite.
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a report repository on top of db.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts the report and its detections in one transaction.
func (r *ReportRepository) Save(ctx context.Context, report *entity.FrameReport) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res := report.Result
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, source, processed_at, width, height, contours, degenerate, aborted, red, green, blue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID.String(), report.Source, report.ProcessedAt.UTC(), res.Width, res.Height,
		res.Contours, res.Degenerate, res.Aborted, res.Counts.Red, res.Counts.Green, res.Counts.Blue)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detections (report_id, seq, x, y, label, votes_blue, votes_green, votes_red)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare detection statement: %w", err)
	}
	defer stmt.Close()

	for i, det := range res.Detections {
		_, err := stmt.ExecContext(ctx, report.ID.String(), i, det.Centroid.X, det.Centroid.Y,
			det.Label.String(), det.Votes.Blue, det.Votes.Green, det.Votes.Red)
		if err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns the latest limit reports, newest first. limit <= 0 returns all of them.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]entity.FrameReport, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	query := `
		SELECT id, source, processed_at, width, height, contours, degenerate, aborted, red, green, blue
		FROM reports
		ORDER BY processed_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []entity.FrameReport
	for rows.Next() {
		var (
			rep entity.FrameReport
			id  string
		)
		res := &rep.Result
		err := rows.Scan(&id, &rep.Source, &rep.ProcessedAt, &res.Width, &res.Height,
			&res.Contours, &res.Degenerate, &res.Aborted, &res.Counts.Red, &res.Counts.Green, &res.Counts.Blue)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if rep.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse report id %q: %w", id, err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}

	for i := range reports {
		dets, err := r.detections(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Result.Detections = dets
	}

	return reports, nil
}

// detections returns the detections of one report in their original order.
func (r *ReportRepository) detections(ctx context.Context, reportID uuid.UUID) ([]entity.Detection, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT x, y, label, votes_blue, votes_green, votes_red
		FROM detections WHERE report_id = ? ORDER BY seq
	`, reportID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	dets := []entity.Detection{}
	for rows.Next() {
		var (
			det   entity.Detection
			x, y  int
			label string
		)
		if err := rows.Scan(&x, &y, &label, &det.Votes.Blue, &det.Votes.Green, &det.Votes.Red); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		det.Centroid = image.Pt(x, y)
		if det.Label, err = entity.ParseLabel(label); err != nil {
			return nil, err
		}
		dets = append(dets, det)
	}

	return dets, rows.Err()
}

// Totals sums the per-colour counts of every stored report.
func (r *ReportRepository) Totals(ctx context.Context) (entity.Counts, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var c entity.Counts
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(red), 0), COALESCE(SUM(green), 0), COALESCE(SUM(blue), 0) FROM reports
	`).Scan(&c.Red, &c.Green, &c.Blue)
	if err != nil {
		return entity.Counts{}, fmt.Errorf("failed to sum counts: %w", err)
	}
	return c, nil
}

var _ port.ReportRepository = (*ReportRepository)(nil)
