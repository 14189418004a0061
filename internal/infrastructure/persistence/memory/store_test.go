package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-ddb-backend/internal/infrastructure/persistence"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func item(pk, sk string, extra ...string) persistence.Item {
	it := persistence.Item{persistence.AttrPK: s(pk), persistence.AttrSK: s(sk)}
	for i := 0; i+1 < len(extra); i += 2 {
		it[extra[i]] = s(extra[i+1])
	}
	return it
}

func TestStore_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	key := persistence.Key{PartitionKey: "ACCOUNT#alice", SortKey: "ACCOUNT#alice"}

	t.Run("Should reject a second put when the item must not exist", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, item(key.PartitionKey, key.SortKey), persistence.IfNotExists))
		err := store.Put(ctx, item(key.PartitionKey, key.SortKey), persistence.IfNotExists)
		assert.ErrorIs(t, err, persistence.ErrConditionFailed)
	})

	t.Run("Should merge updates onto the existing item", func(t *testing.T) {
		updated, err := store.Update(ctx, key, map[string]any{"Bio": "hello"}, persistence.IfExists)
		require.NoError(t, err)
		assert.Equal(t, s("hello"), updated["Bio"])
		assert.Equal(t, s(key.PartitionKey), updated[persistence.AttrPK])
	})

	t.Run("Should fail an update of a missing item", func(t *testing.T) {
		missing := persistence.Key{PartitionKey: "ACCOUNT#nobody", SortKey: "ACCOUNT#nobody"}
		_, err := store.Update(ctx, missing, map[string]any{"Bio": "x"}, persistence.IfExists)
		assert.ErrorIs(t, err, persistence.ErrConditionFailed)
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		require.NoError(t, store.Delete(ctx, key))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_Increment(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	key := persistence.Key{PartitionKey: "COUNTER#acme#widgets", SortKey: "SEQUENCE#issue"}

	const workers = 50
	var wg sync.WaitGroup
	values := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.Increment(ctx, key, "Value", 1)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for v := range values {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "value %d missing", i)
	}
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for i := 1; i <= 5; i++ {
		sk := fmt.Sprintf("ISSUE#%010d", i)
		status := "OPEN"
		if i%2 == 0 {
			status = "CLOSED"
		}
		require.NoError(t, store.Put(ctx, item("REPO#acme#widgets", sk,
			persistence.AttrGSI1PK, "ISSUE#acme#widgets",
			persistence.AttrGSI1SK, fmt.Sprintf("ISSUE#%s#%010d", status, i),
		), persistence.IfNotExists))
	}
	require.NoError(t, store.Put(ctx, item("REPO#acme#widgets", "PR#0000000001"), persistence.IfNotExists))

	t.Run("Should filter by sort key prefix", func(t *testing.T) {
		res, err := store.Query(ctx, persistence.Query{PartitionKey: "REPO#acme#widgets", SortKeyPrefix: "ISSUE#"})
		require.NoError(t, err)
		assert.Len(t, res.Items, 5)
		assert.Nil(t, res.LastEvaluated)
	})

	t.Run("Should page through a GSI", func(t *testing.T) {
		var got []string
		var start map[string]string
		pages := 0
		for {
			res, err := store.Query(ctx, persistence.Query{
				Index:         persistence.GSI1,
				PartitionKey:  "ISSUE#acme#widgets",
				SortKeyPrefix: "ISSUE#OPEN#",
				Limit:         2,
				StartKey:      start,
			})
			require.NoError(t, err)
			pages++
			for _, it := range res.Items {
				got = append(got, it[persistence.AttrSK].(*types.AttributeValueMemberS).Value)
			}
			if res.LastEvaluated == nil {
				break
			}
			start = res.LastEvaluated
		}
		assert.Equal(t, 2, pages)
		assert.Equal(t, []string{"ISSUE#0000000001", "ISSUE#0000000003", "ISSUE#0000000005"}, got)
	})

	t.Run("Should list descending", func(t *testing.T) {
		res, err := store.Query(ctx, persistence.Query{PartitionKey: "REPO#acme#widgets", SortKeyPrefix: "ISSUE#", Descending: true, Limit: 1})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, s("ISSUE#0000000005"), res.Items[0][persistence.AttrSK])
	})
}
