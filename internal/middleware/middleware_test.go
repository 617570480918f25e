package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_AssignsID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	var seen string
	cmd := RequestID(logger)("show", func(ctx context.Context, args []string) error {
		seen = GetRequestID(ctx)
		zerolog.Ctx(ctx).Info().Msg("inside")
		return nil
	})

	require.NoError(t, cmd(context.Background(), nil))

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
	assert.Contains(t, buf.String(), `"command":"show"`)
	assert.Contains(t, buf.String(), "inside")
}

func TestRequestID_KeepsExistingID(t *testing.T) {
	var seen string
	cmd := RequestID(zerolog.Nop())("search", func(ctx context.Context, args []string) error {
		seen = GetRequestID(ctx)
		return nil
	})

	require.NoError(t, cmd(WithRequestID(context.Background(), "fixed-id"), []string{"#ABC"}))
	assert.Equal(t, "fixed-id", seen)
}

func TestRequestID_PassesErrorThrough(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("player not found")
	cmd := RequestID(zerolog.New(&buf))("search", func(context.Context, []string) error {
		return want
	})

	assert.ErrorIs(t, cmd(context.Background(), nil), want)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}
