package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/input"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store"
	"github.com/aussiebroadwan/healthtrack/pkg/slogx"
)

type RecordService struct {
	Store store.Store

	// Now is swappable for tests; records stamp their date from it.
	Now func() time.Time
}

func NewRecordService(st store.Store) *RecordService {
	return &RecordService{Store: st, Now: time.Now}
}

// AddRecord validates the raw field strings and persists a new record for
// userID. Validation runs entirely before the store is touched: an all-blank
// input, an unparseable number or an overlong note never reach it. Blank
// numeric fields default to zero. The record date is fixed to today.
func (s *RecordService) AddRecord(
	ctx context.Context,
	userID int64,
	in input.RecordInput,
) (domain.HealthRecord, error) {
	l := slogx.FromContext(ctx)

	if in.AllEmpty() {
		return domain.HealthRecord{}, input.ErrEmptyRecord
	}

	weight, err := input.ParseMeasurement("weight", in.Weight, 0)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	temperature, err := input.ParseMeasurement("temperature", in.Temperature, 0)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	if err := input.CheckNote(in.Note); err != nil {
		return domain.HealthRecord{}, err
	}

	// The owner must exist before we hand the row to the store.
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.HealthRecord{}, ErrNotFound
		}
		return domain.HealthRecord{}, persistence("add record", err)
	}

	rec, err := s.Store.Records().CreateRecord(ctx, domain.HealthRecord{
		Weight:        weight,
		Temperature:   temperature,
		BloodPressure: in.BloodPressure,
		Note:          in.Note,
		Date:          s.Now().UTC(),
		UserID:        userID,
	})
	if err != nil {
		return domain.HealthRecord{}, persistence("add record", err)
	}

	l.Info("record added",
		slog.Int64("record_id", rec.ID),
		slog.Int64("user_id", userID),
	)
	return rec, nil
}

// EditRecord updates an existing record owned by userID. Each field falls
// back independently to its stored value when the input is blank; the date
// and owner never change.
func (s *RecordService) EditRecord(
	ctx context.Context,
	userID, recordID int64,
	in input.RecordInput,
) (domain.HealthRecord, error) {
	l := slogx.FromContext(ctx)

	rec, err := s.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return domain.HealthRecord{}, err
	}

	if in.AllEmpty() {
		return domain.HealthRecord{}, input.ErrEmptyRecord
	}

	rec.Weight, err = input.ParseMeasurement("weight", in.Weight, rec.Weight)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	rec.Temperature, err = input.ParseMeasurement("temperature", in.Temperature, rec.Temperature)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	rec.BloodPressure = input.TextOrFallback(in.BloodPressure, rec.BloodPressure)
	rec.Note = input.TextOrFallback(in.Note, rec.Note)

	if err := input.CheckNote(rec.Note); err != nil {
		return domain.HealthRecord{}, err
	}

	if err := s.Store.Records().UpdateRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.HealthRecord{}, ErrNotFound
		}
		return domain.HealthRecord{}, persistence("edit record", err)
	}

	l.Info("record updated",
		slog.Int64("record_id", rec.ID),
		slog.Int64("user_id", userID),
	)
	return rec, nil
}

// DeleteRecord removes a record owned by userID.
func (s *RecordService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	l := slogx.FromContext(ctx)

	if _, err := s.ownedRecord(ctx, userID, recordID); err != nil {
		return err
	}

	if err := s.Store.Records().DeleteRecord(ctx, recordID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return persistence("delete record", err)
	}

	l.Info("record deleted",
		slog.Int64("record_id", recordID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// ListRecords returns every record userID owns, in insertion order.
func (s *RecordService) ListRecords(ctx context.Context, userID int64) ([]domain.HealthRecord, error) {
	records, err := s.Store.Records().ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, persistence("list records", err)
	}
	return records, nil
}

// ExportRecords renders one line per record for serialization into an
// external sink. The caller owns the file I/O.
func (s *RecordService) ExportRecords(ctx context.Context, userID int64) ([]string, error) {
	records, err := s.ListRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, input.FormatRecord(rec))
	}
	return lines, nil
}

// ownedRecord fetches a record and enforces ownership: missing records are
// ErrNotFound, someone else's records are ErrForbidden.
func (s *RecordService) ownedRecord(
	ctx context.Context,
	userID, recordID int64,
) (domain.HealthRecord, error) {
	rec, err := s.Store.Records().GetRecordByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.HealthRecord{}, ErrNotFound
		}
		return domain.HealthRecord{}, persistence("get record", err)
	}

	if rec.UserID != userID {
		slogx.FromContext(ctx).Warn("ownership violation",
			slog.Int64("record_id", recordID),
			slog.Int64("owner_id", rec.UserID),
			slog.Int64("acting_user_id", userID),
		)
		return domain.HealthRecord{}, ErrForbidden
	}
	return rec, nil
}
