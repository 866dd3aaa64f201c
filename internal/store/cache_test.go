package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dd-go/internal/model"
)

func newDomainCache() *bucketCache[model.Domain] {
	return newBucketCache(
		func(d model.Domain) int64 { return d.ID },
		func(d model.Domain) int64 { return d.SuperdomainID },
	)
}

func TestBucketCache_ReplaceAddUpdateRemove(t *testing.T) {
	c := newDomainCache()
	assert.False(t, c.loaded(1))

	c.replace(1, []model.Domain{{ID: 10, SuperdomainID: 1, Name: "Orders"}, {ID: 11, SuperdomainID: 1, Name: "Billing"}})
	require.True(t, c.loaded(1))
	assert.Len(t, c.bucket(1), 2)

	c.add(model.Domain{ID: 12, SuperdomainID: 1, Name: "Shipping"})
	names := []string{}
	for _, d := range c.bucket(1) {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Orders", "Billing", "Shipping"}, names)

	assert.True(t, c.update(model.Domain{ID: 11, SuperdomainID: 1, Name: "Invoicing"}))
	got, ok := c.get(11)
	require.True(t, ok)
	assert.Equal(t, "Invoicing", got.Name)

	assert.False(t, c.update(model.Domain{ID: 99, SuperdomainID: 1, Name: "Ghost"}), "unknown ids are not inserted")
	_, ok = c.get(99)
	assert.False(t, ok)

	assert.True(t, c.remove(10))
	assert.False(t, c.remove(10))
	assert.Len(t, c.bucket(1), 2)
	require.NoError(t, c.checkInvariant())
}

func TestBucketCache_ReplaceDropsStaleRecords(t *testing.T) {
	c := newDomainCache()
	c.replace(1, []model.Domain{{ID: 10, SuperdomainID: 1}, {ID: 11, SuperdomainID: 1}})
	c.replace(1, []model.Domain{{ID: 11, SuperdomainID: 1}})

	_, ok := c.get(10)
	assert.False(t, ok)
	assert.Equal(t, 1, c.len())
	require.NoError(t, c.checkInvariant())
}

func TestBucketCache_RecordMovesBetweenBuckets(t *testing.T) {
	c := newDomainCache()
	c.replace(1, []model.Domain{{ID: 10, SuperdomainID: 1}})
	c.replace(2, []model.Domain{})

	require.True(t, c.update(model.Domain{ID: 10, SuperdomainID: 2}))
	assert.Empty(t, c.bucket(1))
	assert.Len(t, c.bucket(2), 1)
	require.NoError(t, c.checkInvariant())

	// A reload of another parent that now lists the record claims it.
	c.replace(3, []model.Domain{{ID: 10, SuperdomainID: 3}})
	assert.Empty(t, c.bucket(2))
	require.NoError(t, c.checkInvariant())
}

func TestBucketCache_InvariantUnderRandomOperations(t *testing.T) {
	c := newDomainCache()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		parent := int64(rng.Intn(4))
		id := int64(rng.Intn(30))
		switch rng.Intn(4) {
		case 0:
			n := rng.Intn(5)
			items := make([]model.Domain, 0, n)
			for j := 0; j < n; j++ {
				items = append(items, model.Domain{ID: int64(rng.Intn(30)), SuperdomainID: parent})
			}
			c.replace(parent, items)
		case 1:
			c.add(model.Domain{ID: id, SuperdomainID: parent})
		case 2:
			c.update(model.Domain{ID: id, SuperdomainID: parent})
		case 3:
			c.remove(id)
		}
		require.NoError(t, c.checkInvariant(), "after step %d", i)
	}
}
