package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/config"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqlStore, err := OpenSQLStore(&config.StorageConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	fileStore, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"sql":  sqlStore,
		"file": fileStore,
	}
}

func userDoc(id, phone, username string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"phone":    phone,
		"username": username,
		"points":   100,
	}
}

func TestStore_AddAndGet(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := s.Add(ctx, "users", userDoc("user_1", "13800138000", "alice"))
			require.NoError(t, err)
			assert.Equal(t, "user_1", id)

			raw, err := s.Get(ctx, "users", "user_1")
			require.NoError(t, err)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "alice", got["username"])
			assert.Equal(t, float64(100), got["points"])
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "users", "user_none")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_UnknownCollection(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.GetAll(ctx, "widgets")
			assert.ErrorIs(t, err, ErrUnknownCollection)

			_, err = s.Add(ctx, "widgets", userDoc("w_1", "1", "w"))
			assert.ErrorIs(t, err, ErrUnknownCollection)
		})
	}
}

func TestStore_AddRequiresID(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Add(context.Background(), "users", map[string]interface{}{
				"username": "noid",
			})
			assert.ErrorIs(t, err, ErrMissingID)
		})
	}
}

func TestStore_UniqueIndex(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Add(ctx, "users", userDoc("user_1", "13800138000", "alice"))
			require.NoError(t, err)

			// Same phone, different user
			_, err = s.Add(ctx, "users", userDoc("user_2", "13800138000", "bob"))
			require.Error(t, err)
			assert.True(t, IsDuplicate(err))

			var dup *DuplicateError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "users", dup.Collection)
			assert.Equal(t, "phone", dup.Field)

			// Same username too
			_, err = s.Add(ctx, "users", userDoc("user_3", "13900139000", "alice"))
			assert.True(t, IsDuplicate(err))

			// The failed inserts must not have landed
			all, err := s.GetAll(ctx, "users")
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_NonUniqueIndexAllowsDuplicates(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, id := range []string{"order_1", "order_2"} {
				_, err := s.Add(ctx, "orders", map[string]interface{}{
					"id":     id,
					"userId": "user_1",
					"status": "待付款",
				})
				require.NoError(t, err)
			}

			docs, err := s.Query(ctx, "orders", "userId", "user_1")
			require.NoError(t, err)
			assert.Len(t, docs, 2)
		})
	}
}

func TestStore_QueryParity(t *testing.T) {
	backends := openBackends(t)
	ctx := context.Background()

	seed := []interface{}{
		map[string]interface{}{"id": "prod_1", "name": "手机", "category": "electronics"},
		map[string]interface{}{"id": "prod_2", "name": "耳机", "category": "electronics"},
		map[string]interface{}{"id": "prod_3", "name": "外套", "category": "clothing"},
	}

	results := map[string]map[string]bool{}
	for name, s := range backends {
		_, err := s.BulkAdd(ctx, "products", seed)
		require.NoError(t, err)

		docs, err := s.Query(ctx, "products", "category", "electronics")
		require.NoError(t, err)

		ids := map[string]bool{}
		for _, raw := range docs {
			var probe struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal(raw, &probe))
			ids[probe.ID] = true
		}
		results[name] = ids
	}

	// Same result set regardless of backend, order not compared
	assert.Equal(t, results["sql"], results["file"])
	assert.Equal(t, map[string]bool{"prod_1": true, "prod_2": true}, results["sql"])
}

func TestStore_QueryUnknownIndex(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Query(context.Background(), "products", "price", "99")
			assert.ErrorIs(t, err, ErrUnknownIndex)
		})
	}
}

func TestStore_Update(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Add(ctx, "users", userDoc("user_1", "13800138000", "alice"))
			require.NoError(t, err)

			updated := userDoc("user_1", "13800138000", "alice2")
			require.NoError(t, s.Update(ctx, "users", updated))

			raw, err := s.Get(ctx, "users", "user_1")
			require.NoError(t, err)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "alice2", got["username"])

			// Old username index entry must be gone
			docs, err := s.Query(ctx, "users", "username", "alice")
			require.NoError(t, err)
			assert.Empty(t, docs)

			docs, err = s.Query(ctx, "users", "username", "alice2")
			require.NoError(t, err)
			assert.Len(t, docs, 1)
		})
	}
}

func TestStore_UpdateRejectsStolenUniqueValue(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Add(ctx, "users", userDoc("user_1", "13800138000", "alice"))
			require.NoError(t, err)
			_, err = s.Add(ctx, "users", userDoc("user_2", "13900139000", "bob"))
			require.NoError(t, err)

			// bob tries to take alice's phone
			err = s.Update(ctx, "users", userDoc("user_2", "13800138000", "bob"))
			assert.True(t, IsDuplicate(err))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Add(ctx, "users", userDoc("user_1", "13800138000", "alice"))
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, "users", "user_1"))

			_, err = s.Get(ctx, "users", "user_1")
			assert.ErrorIs(t, err, ErrNotFound)

			// The freed unique values can be reused
			_, err = s.Add(ctx, "users", userDoc("user_2", "13800138000", "alice"))
			assert.NoError(t, err)
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.BulkAdd(ctx, "cart", []interface{}{
				map[string]interface{}{"id": "cart_1", "userId": "u1", "productId": "p1"},
				map[string]interface{}{"id": "cart_2", "userId": "u1", "productId": "p2"},
			})
			require.NoError(t, err)

			require.NoError(t, s.Clear(ctx, "cart"))

			all, err := s.GetAll(ctx, "cart")
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestStore_BulkAddRollsBackOnDuplicate(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.BulkAdd(ctx, "users", []interface{}{
				userDoc("user_1", "13800138000", "alice"),
				userDoc("user_2", "13800138000", "bob"),
			})
			assert.True(t, IsDuplicate(err))

			all, err := s.GetAll(ctx, "users")
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestOpen_FileDriver(t *testing.T) {
	s, err := Open(&config.StorageConfig{Driver: "file", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", s.Backend())
}

func TestOpen_FallsBackToFile(t *testing.T) {
	s, err := Open(&config.StorageConfig{
		Driver:  "unknown-engine",
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "file", s.Backend())
}
