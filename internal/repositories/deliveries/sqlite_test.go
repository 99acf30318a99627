package deliveries

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(code, date string, stops ...string) *models.Delivery {
	d := &models.Delivery{
		Code:         code,
		DeliveryDate: date,
		Driver:       "Juan dela Cruz",
		Helper:       "Pedro",
		PlateNo:      "ABC-123",
		Trip:         1,
		RefreshedAt:  "2026-10-18 07:00:00",
	}
	for _, s := range stops {
		d.Stops = append(d.Stops, models.Stop{CustomerName: s, DeliveryAddress: s + " st.", SONo: "SO-" + s, ExternalID: "dds-" + s})
	}
	return d
}

func TestUpsert_InsertThenReplaceStops(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sample("DLF-001", "2026-10-18", "A", "B")))

	got, err := r.GetByCode(ctx, "DLF-001")
	require.NoError(t, err)
	require.Len(t, got.Stops, 2)
	assert.Equal(t, "A", got.Stops[0].CustomerName)
	assert.Equal(t, 1, got.Stops[0].Position)
	assert.Equal(t, "dds-B", got.Stops[1].ExternalID)

	upd := sample("DLF-001", "2026-10-18", "C")
	upd.PlateNo = "XYZ-999"
	require.NoError(t, r.Upsert(ctx, upd))

	got, err = r.GetByCode(ctx, "DLF-001")
	require.NoError(t, err)
	assert.Equal(t, "XYZ-999", got.PlateNo)
	require.Len(t, got.Stops, 1)
	assert.Equal(t, "C", got.Stops[0].CustomerName)
}

func TestListByDate_OnlyMatchingDate(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sample("OLD", "2026-10-17", "A")))
	require.NoError(t, r.Upsert(ctx, sample("NEW", "2026-10-18", "A", "B")))

	list, err := r.ListByDate(ctx, "2026-10-18")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "NEW", list[0].Code)
	assert.Len(t, list[0].Stops, 2)

	old, err := r.GetByCode(ctx, "OLD")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", old.DeliveryDate)
}

func TestGetByCode_NotFound(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	_, err := r.GetByCode(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_RemovesHeaderAndStops(t *testing.T) {
	db := repotest.NewDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sample("DLF-9", "2026-10-18", "A", "B")))
	require.NoError(t, r.Delete(ctx, "DLF-9"))

	_, err := r.GetByCode(ctx, "DLF-9")
	require.ErrorIs(t, err, common.ErrNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM delivery_stops WHERE dlf_code = 'DLF-9'`).Scan(&n))
	assert.Zero(t, n)
}
