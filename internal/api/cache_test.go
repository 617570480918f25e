package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache_StaleEntryDroppedOnLookup(t *testing.T) {
	c := newResponseCache(5 * time.Minute)
	t0 := time.Unix(1_800_000_000, 0)

	c.Set("k", []byte("v"), t0)

	body, res := c.Get("k", t0.Add(time.Minute))
	assert.Equal(t, lookupHit, res)
	assert.Equal(t, []byte("v"), body)

	// stale entries linger until looked up
	assert.Equal(t, 1, c.Len())
	_, res = c.Get("k", t0.Add(5*time.Minute))
	assert.Equal(t, lookupStale, res)
	assert.Zero(t, c.Len())

	_, res = c.Get("k", t0.Add(5*time.Minute))
	assert.Equal(t, lookupMiss, res)
}

func TestResponseCache_SetOverwrites(t *testing.T) {
	c := newResponseCache(5 * time.Minute)
	t0 := time.Unix(1_800_000_000, 0)

	c.Set("k", []byte("old"), t0)
	c.Set("k", []byte("new"), t0.Add(4*time.Minute))

	body, res := c.Get("k", t0.Add(8*time.Minute))
	assert.Equal(t, lookupHit, res)
	assert.Equal(t, []byte("new"), body)

	c.Delete("k")
	_, res = c.Get("k", t0)
	assert.Equal(t, lookupMiss, res)
}

func TestQuantize(t *testing.T) {
	w := 5 * time.Minute
	assert.EqualValues(t, 1_800_000_000, quantize(time.Unix(1_800_000_000, 0), w))
	assert.EqualValues(t, 1_800_000_000, quantize(time.Unix(1_800_000_299, 999), w))
	assert.EqualValues(t, 1_800_000_300, quantize(time.Unix(1_800_000_300, 0), w))
	assert.EqualValues(t, 1_800_000_123, quantize(time.Unix(1_800_000_123, 0), 0))
}
