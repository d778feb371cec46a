package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sellerops/wbsync/internal/wbapi"
)

// CursorStore persists per-tenant pagination watermarks in Redis so a restart
// resumes where the previous run stopped instead of re-reading everything.
type CursorStore struct {
	rdb *redis.Client
}

func NewCursorStore(rdb *redis.Client) *CursorStore {
	return &CursorStore{rdb: rdb}
}

func cursorKey(tenantID int64, kind string) string {
	return fmt.Sprintf("cursor:%d:%s", tenantID, kind)
}

// Load returns the saved cursor, or a zero cursor when none exists yet.
func (s *CursorStore) Load(ctx context.Context, tenantID int64, kind string) (wbapi.Cursor, error) {
	var cur wbapi.Cursor
	raw, err := s.rdb.Get(ctx, cursorKey(tenantID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cur, nil
	}
	if err != nil {
		return cur, fmt.Errorf("load cursor %s: %w", kind, err)
	}
	if err := json.Unmarshal(raw, &cur); err != nil {
		return wbapi.Cursor{}, fmt.Errorf("decode cursor %s: %w", kind, err)
	}
	return cur, nil
}

// Save overwrites the cursor for (tenant, kind). Cursors never expire; they
// are overwritten by the next successful run.
func (s *CursorStore) Save(ctx context.Context, tenantID int64, kind string, cur wbapi.Cursor) error {
	raw, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, cursorKey(tenantID, kind), raw, 0).Err(); err != nil {
		return fmt.Errorf("save cursor %s: %w", kind, err)
	}
	return nil
}
