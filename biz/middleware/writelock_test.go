package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yi-nology/blender_board/pkg/lock"
)

func TestWriteLockDisabled(t *testing.T) {
	assert.Nil(t, WriteLock(nil))
}

func TestWriteLockUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	reached := false
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.POST("/x", append(WriteLock(lock.New(client, "k", time.Second, time.Second)), func(ctx context.Context, c *app.RequestContext) {
		reached = true
		c.String(consts.StatusOK, "ok")
	})...)

	w := ut.PerformRequest(h.Engine, consts.MethodPost, "/x", nil)
	require.Equal(t, consts.StatusServiceUnavailable, w.Code)
	assert.Contains(t, string(w.Result().Header.ContentType()), "application/json")
	assert.JSONEq(t, `{"error":"Service busy, please retry later.","code":"service_unavailable"}`, string(w.Result().Body()))
	assert.False(t, reached)
}
