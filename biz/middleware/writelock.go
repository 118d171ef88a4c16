package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/lock"
)

// WriteLock serializes mutating requests across processes through l. With a
// nil lock (Redis disabled) it returns nil so routes carry no extra handler.
func WriteLock(l *lock.DistributedLock) []app.HandlerFunc {
	if l == nil {
		return nil
	}
	return []app.HandlerFunc{writeLockHandler(l)}
}

func writeLockHandler(l *lock.DistributedLock) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		lockID, err := l.Acquire(ctx)
		if err != nil {
			hlog.CtxWarnf(ctx, "[WriteLock] failed to acquire lock: %v", err)
			appErr := common.NewServiceUnavailableError(err)
			c.AbortWithStatusJSON(appErr.Status, appErr.Response())
			return
		}
		defer func() {
			if releaseErr := l.Release(context.WithoutCancel(ctx), lockID); releaseErr != nil {
				hlog.CtxWarnf(ctx, "[WriteLock] failed to release lock: %v", releaseErr)
			}
		}()
		c.Next(ctx)
	}
}
