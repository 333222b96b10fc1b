package obs

import (
	"context"
	"errors"
	"testing"

	"rental-quote-service/internal/testutil/testlog"

	"github.com/stretchr/testify/require"
)

func TestTime_LogsSuccessAndFailure(t *testing.T) {
	rec := testlog.New()
	ctx := WithRequestID(context.Background(), "req-1")

	func() (err error) {
		defer Time(ctx, rec.Logger(), "ok.op")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, rec.Logger(), "bad.op")(&err)
		return errors.New("boom")
	}()

	entries := rec.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "debug", entries[0].Level)
	op, _ := entries[0].Field("op")
	require.Equal(t, "ok.op", op)
	id, _ := entries[0].Field("req_id")
	require.Equal(t, "req-1", id)

	require.Equal(t, "warn", entries[1].Level)
	errVal, _ := entries[1].Field("err")
	require.Equal(t, "boom", errVal)
}

func TestRequestID_Default(t *testing.T) {
	require.Equal(t, "-", RequestID(context.Background()))
}
