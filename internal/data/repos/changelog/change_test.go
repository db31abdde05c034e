package changelog

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
)

func TestChangeRepoPaging(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewChangeRepo(db, testutil.Logger(t))
	var batch []*changelog.Change
	for i := int64(1); i <= 3; i++ {
		batch = append(batch, &changelog.Change{
			EntityKind: "area",
			EntityID:   i,
			Action:     changelog.ActionCreated,
			Actor:      "anonymous",
			Payload:    datatypes.JSON(`{"names":[]}`),
		})
	}
	created, err := repo.Append(ctx, tx, batch)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	page, err := repo.ListAfter(ctx, tx, 0, 2)
	if err != nil {
		t.Fatalf("ListAfter: %v", err)
	}
	if len(page) != 2 || page[0].ID != created[0].ID || page[1].ID != created[1].ID {
		t.Fatalf("ListAfter: unexpected first page %+v", page)
	}
	if page[0].CreatedAt.IsZero() {
		t.Fatalf("ListAfter: created_at not set")
	}

	rest, err := repo.ListAfter(ctx, tx, page[1].ID, 10)
	if err != nil || len(rest) != 1 || rest[0].EntityID != 3 {
		t.Fatalf("ListAfter (second page): got %+v, %v", rest, err)
	}

	byEntity, err := repo.ListByEntity(ctx, tx, "area", 2)
	if err != nil || len(byEntity) != 1 {
		t.Fatalf("ListByEntity: got %+v, %v", byEntity, err)
	}
}
