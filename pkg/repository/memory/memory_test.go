package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/types"
	"github.com/apexfs/firstline/pkg/repository/memory"
)

func newRecord(id string, createdAt time.Time) *model.ModelRecord {
	return &model.ModelRecord{
		ID:        types.ModelID(id),
		ModelName: "Model " + id,
		FactorSelections: map[types.FactorID]string{
			"decision_criticality": "Low",
		},
		CreatedAt: createdAt,
	}
}

func TestRepository_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	record := newRecord("model-1", time.Now())
	stored, err := repo.Put(ctx, record)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.ID).Equal(record.ID)

	retrieved, err := repo.Get(ctx, record.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, retrieved.ModelName).Equal("Model model-1")
}

func TestRepository_PutRequiresID(t *testing.T) {
	repo := memory.New()
	_, err := repo.Put(context.Background(), &model.ModelRecord{ModelName: "no id"})
	gt.Error(t, err)
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := memory.New()
	_, err := repo.Get(context.Background(), types.ModelID("missing"))
	gt.Error(t, err).Is(memory.ErrNotFound)
}

func TestRepository_CloneSemantics(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	record := newRecord("model-1", time.Now())
	_, err := repo.Put(ctx, record)
	gt.NoError(t, err).Required()

	// mutating the caller's record after Put must not affect the store
	record.ModelName = "mutated after put"
	record.FactorSelections["decision_criticality"] = "High"

	got, err := repo.Get(ctx, "model-1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.ModelName).Equal("Model model-1")
	gt.Value(t, got.FactorSelections[types.FactorID("decision_criticality")]).Equal("Low")

	// mutating a retrieved record must not affect later reads
	got.ModelName = "mutated after get"
	again, err := repo.Get(ctx, "model-1")
	gt.NoError(t, err).Required()
	gt.Value(t, again.ModelName).Equal("Model model-1")
}

func TestRepository_PutReplaces(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	first := newRecord("model-1", time.Now())
	_, err := repo.Put(ctx, first)
	gt.NoError(t, err).Required()

	updated := newRecord("model-1", first.CreatedAt)
	updated.ModelName = "Renamed"
	_, err = repo.Put(ctx, updated)
	gt.NoError(t, err).Required()

	got, err := repo.Get(ctx, "model-1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.ModelName).Equal("Renamed")

	records, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
}

func TestRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range []*model.ModelRecord{
		newRecord("model-c", base.Add(2*time.Hour)),
		newRecord("model-a", base),
		newRecord("model-b", base.Add(time.Hour)),
	} {
		_, err := repo.Put(ctx, r)
		gt.NoError(t, err).Required()
	}

	records, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(3).Required()
	gt.Value(t, records[0].ID).Equal(types.ModelID("model-a"))
	gt.Value(t, records[1].ID).Equal(types.ModelID("model-b"))
	gt.Value(t, records[2].ID).Equal(types.ModelID("model-c"))
}

func TestRepository_ListTieBreak(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"model-b", "model-a"} {
		_, err := repo.Put(ctx, newRecord(id, at))
		gt.NoError(t, err).Required()
	}

	records, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(2).Required()
	gt.Value(t, records[0].ID).Equal(types.ModelID("model-a"))
	gt.Value(t, records[1].ID).Equal(types.ModelID("model-b"))
}

func TestRepository_Close(t *testing.T) {
	gt.NoError(t, memory.New().Close())
}
