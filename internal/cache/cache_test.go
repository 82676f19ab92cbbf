package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/timknowlden/HairManager-sub001/config"
)

type cachedProfile struct {
	OwnerID string
	APIKey  string
}

func newCacheForTest(t *testing.T) Cache {
	t.Helper()

	// An empty Redis address makes NewCache run an embedded server.
	config.MockConfig(&config.Configuration{})

	c, err := NewCache()
	if err != nil {
		t.Fatalf("Error creating cache: %s", err)
	}
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newCacheForTest(t)
	ctx := context.Background()

	stored := cachedProfile{OwnerID: "usr_1", APIKey: "SG.key"}
	assert.NoError(t, c.Set(ctx, "profile:usr_1", stored, time.Minute))

	var got cachedProfile
	assert.NoError(t, c.Get(ctx, "profile:usr_1", &got))
	assert.Equal(t, stored, got)
}

func TestGetMissLeavesTargetUntouched(t *testing.T) {
	c := newCacheForTest(t)

	got := cachedProfile{OwnerID: "sentinel"}
	assert.NoError(t, c.Get(context.Background(), "profile:absent", &got))
	assert.Equal(t, "sentinel", got.OwnerID)
}

func TestDelete(t *testing.T) {
	c := newCacheForTest(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "profile:usr_2", cachedProfile{OwnerID: "usr_2"}, time.Minute))
	assert.NoError(t, c.Delete(ctx, "profile:usr_2"))

	var got cachedProfile
	assert.NoError(t, c.Get(ctx, "profile:usr_2", &got))
	assert.Empty(t, got.OwnerID)
}
