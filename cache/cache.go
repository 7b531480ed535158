package cache

import (
	"context"
	"time"

	"github.com/andrewpaige1/workbook-api/models"
)

// Listing caches folder listings. Writers must invalidate every listing they
// change; a miss is always safe because readers fall back to the store.
type Listing interface {
	Get(ctx context.Context, key Key) ([]models.Item, bool)
	Set(ctx context.Context, key Key, items []models.Item)
	Invalidate(ctx context.Context, keys ...Key)
	InvalidateOwner(ctx context.Context, ownerID string)
}

// Key identifies the listing of one folder (or the root) of one owner.
type Key struct {
	OwnerID  string
	ParentID string // empty for root
}

func KeyFor(ownerID string, parentID *string) Key {
	k := Key{OwnerID: ownerID}
	if parentID != nil {
		k.ParentID = *parentID
	}
	return k
}

func (k Key) String() string {
	return ownerPrefix(k.OwnerID) + parentSegment(k.ParentID)
}

func ownerPrefix(ownerID string) string {
	return "listing:" + ownerID + ":"
}

func parentSegment(parentID string) string {
	if parentID == "" {
		return "root"
	}
	return parentID
}

type Config struct {
	TTL     time.Duration
	MaxSize int
}
