package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	user, err := st.Users().CreateUser(context.Background(), domain.User{
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		FirstName:    "Alice",
		LastName:     "Lee",
	})
	require.NoError(t, err)
	return user
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		user := createUser(t, st, "alice")
		require.Positive(t, user.ID)
		require.False(t, user.CreatedAt.IsZero())
		require.False(t, user.UpdatedAt.IsZero())
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		_, err := st.Users().CreateUser(ctx, domain.User{
			Username:     "alice",
			PasswordHash: "hash",
			FirstName:    "Other",
			LastName:     "Person",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("lookup by username and id", func(t *testing.T) {
		byName, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "Alice", byName.FirstName)

		byID, err := st.Users().GetUserByID(ctx, byName.ID)
		require.NoError(t, err)
		require.Equal(t, byName.Username, byID.Username)
	})

	t.Run("lookup is exact match only", func(t *testing.T) {
		_, err := st.Users().GetUserByUsername(ctx, "Alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, 9999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update profile touches names only", func(t *testing.T) {
		user, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, st.Users().UpdateProfile(ctx, user.ID, "Alicia", "Leung"))

		updated, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "Alicia", updated.FirstName)
		require.Equal(t, "Leung", updated.LastName)
		require.Equal(t, user.Username, updated.Username)
		require.Equal(t, user.PasswordHash, updated.PasswordHash)
	})

	t.Run("update profile of unknown user fails", func(t *testing.T) {
		err := st.Users().UpdateProfile(ctx, 9999, "No", "One")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("count users", func(t *testing.T) {
		count, err := st.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})
}

func TestRecordsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	owner := createUser(t, st, "alice")

	t.Run("foreign key enforced", func(t *testing.T) {
		_, err := st.Records().CreateRecord(ctx, domain.HealthRecord{
			Weight: 70,
			Date:   time.Now(),
			UserID: 9999,
		})
		require.Error(t, err)
	})

	t.Run("create and read back", func(t *testing.T) {
		rec, err := st.Records().CreateRecord(ctx, domain.HealthRecord{
			Weight:        70,
			Temperature:   36.6,
			BloodPressure: "120/80",
			Note:          "feeling fine",
			Date:          time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC),
			UserID:        owner.ID,
		})
		require.NoError(t, err)
		require.Positive(t, rec.ID)

		got, err := st.Records().GetRecordByID(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 70.0, got.Weight)
		require.Equal(t, 36.6, got.Temperature)
		require.Equal(t, "120/80", got.BloodPressure)
		require.Equal(t, "feeling fine", got.Note)
		require.Equal(t, owner.ID, got.UserID)

		// Day precision: the time component is dropped at the store boundary.
		require.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got.Date)
	})

	t.Run("list is owner scoped and insertion ordered", func(t *testing.T) {
		other := createUser(t, st, "bob")

		second, err := st.Records().CreateRecord(ctx, domain.HealthRecord{
			Weight: 71, Date: time.Now(), UserID: owner.ID,
		})
		require.NoError(t, err)

		_, err = st.Records().CreateRecord(ctx, domain.HealthRecord{
			Weight: 90, Date: time.Now(), UserID: other.ID,
		})
		require.NoError(t, err)

		records, err := st.Records().ListRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Less(t, records[0].ID, records[1].ID)
		require.Equal(t, second.ID, records[1].ID)
		for _, rec := range records {
			require.Equal(t, owner.ID, rec.UserID)
		}

		empty, err := st.Records().ListRecordsByUser(ctx, 9999)
		require.NoError(t, err)
		require.Empty(t, empty)
	})

	t.Run("update keeps date and owner", func(t *testing.T) {
		records, err := st.Records().ListRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)
		rec := records[0]

		rec.Weight = 69.5
		rec.Note = "lost some weight"
		require.NoError(t, st.Records().UpdateRecord(ctx, rec))

		got, err := st.Records().GetRecordByID(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 69.5, got.Weight)
		require.Equal(t, "lost some weight", got.Note)
		require.Equal(t, rec.Date, got.Date)
		require.Equal(t, owner.ID, got.UserID)
	})

	t.Run("update unknown record fails", func(t *testing.T) {
		err := st.Records().UpdateRecord(ctx, domain.HealthRecord{ID: 9999})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		records, err := st.Records().ListRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)

		require.NoError(t, st.Records().DeleteRecord(ctx, records[0].ID))

		_, err = st.Records().GetRecordByID(ctx, records[0].ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, st.Records().DeleteRecord(ctx, records[0].ID), store.ErrNotFound)

		count, err := st.Records().CountRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	owner := createUser(t, st, "alice")

	t.Run("rollback on error leaves no partial writes", func(t *testing.T) {
		sentinel := context.Canceled // any error will do
		err := st.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Records().CreateRecord(ctx, domain.HealthRecord{
				Weight: 70, Date: time.Now(), UserID: owner.ID,
			})
			require.NoError(t, err)
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		count, err := st.Records().CountRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Records().CreateRecord(ctx, domain.HealthRecord{
				Weight: 70, Date: time.Now(), UserID: owner.ID,
			})
			return err
		})
		require.NoError(t, err)

		count, err := st.Records().CountRecordsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})
}
