package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store"
)

// dateLayout is how record dates are stored. Day precision only; the time
// component of domain.HealthRecord.Date is dropped at the store boundary.
const dateLayout = "2006-01-02"

type recordsRepo struct {
	db dbtx
}

func (r *recordsRepo) CreateRecord(ctx context.Context, rec domain.HealthRecord) (domain.HealthRecord, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO health_records (weight, temperature, blood_pressure, note, date, user_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		rec.Weight, rec.Temperature, rec.BloodPressure, rec.Note,
		rec.Date.Format(dateLayout), rec.UserID,
	).Scan(&rec.ID)
	if err != nil {
		return domain.HealthRecord{}, err
	}

	rec.Date = truncateToDay(rec.Date)
	return rec, nil
}

func (r *recordsRepo) GetRecordByID(ctx context.Context, id int64) (domain.HealthRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, weight, temperature, blood_pressure, note, date, user_id
		FROM health_records WHERE id = ?`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		return domain.HealthRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *recordsRepo) ListRecordsByUser(ctx context.Context, userID int64) ([]domain.HealthRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, weight, temperature, blood_pressure, note, date, user_id
		FROM health_records WHERE user_id = ?
		ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.HealthRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *recordsRepo) UpdateRecord(ctx context.Context, rec domain.HealthRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE health_records
		SET weight = ?, temperature = ?, blood_pressure = ?, note = ?
		WHERE id = ?`,
		rec.Weight, rec.Temperature, rec.BloodPressure, rec.Note, rec.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *recordsRepo) DeleteRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *recordsRepo) CountRecordsByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM health_records WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}

func scanRecord(scan func(dest ...any) error) (domain.HealthRecord, error) {
	var rec domain.HealthRecord
	var date string

	err := scan(
		&rec.ID, &rec.Weight, &rec.Temperature,
		&rec.BloodPressure, &rec.Note, &date, &rec.UserID,
	)
	if err != nil {
		return domain.HealthRecord{}, err
	}

	rec.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	return rec, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
