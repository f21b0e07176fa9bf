package context_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "github.com/Ramsey-B/poppy/pkg/context"
)

func TestContextValues(t *testing.T) {
	t.Run("should round trip request values", func(t *testing.T) {
		ctx := context.Background()
		ctx = appctx.SetRequestID(ctx, "req-1")
		ctx = appctx.SetMethod(ctx, "POST")
		ctx = appctx.SetRoute(ctx, "/parties/create")
		ctx = appctx.SetRemoteIP(ctx, "10.0.0.1")
		ctx = appctx.SetReferer(ctx, "/parties")

		assert.Equal(t, "req-1", appctx.GetRequestID(ctx))
		assert.Equal(t, "POST", appctx.GetMethod(ctx))
		assert.Equal(t, "/parties/create", appctx.GetRoute(ctx))
		assert.Equal(t, "10.0.0.1", appctx.GetRemoteIP(ctx))
		assert.Equal(t, "/parties", appctx.GetReferer(ctx))
	})

	t.Run("should return zero values when unset", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, appctx.GetRequestID(ctx))
		assert.False(t, appctx.IsPage(ctx))
	})

	t.Run("should flag page requests", func(t *testing.T) {
		ctx := appctx.SetPage(context.Background(), true)
		assert.True(t, appctx.IsPage(ctx))
	})
}
