package httpdevice_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/device"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/device/httpdevice"
)

func newBridge(t *testing.T, mux *http.ServeMux) *httpdevice.Dialer {
	t.Helper()
	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return httpdevice.New(httpdevice.Options{
		BaseURL: srv.URL + "/",
		Timeout: 5 * time.Second,
		Logger:  slogtest.Make(t, &slogtest.Options{IgnoreErrors: true}),
	})
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	d := httpdevice.New(httpdevice.Options{BaseURL: srv.URL})
	_, err := d.Dial(context.Background())
	require.ErrorIs(t, err, device.ErrUnreachable)
}

func TestAttendance_JSON(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/attendance", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"attendance":[
			{"user_id":"7","timestamp":"2024-01-10 23:58:00","uid":12,"status":1,"punch":0},
			{"user_id":8,"timestamp":"2024-01-11 00:01:10"},
			{"user_id":"x9","timestamp":"2024-01-11 00:02:00"},
			{"user_id":"7","timestamp":"not-a-time"}
		]}`))
	})
	d := newBridge(t, mux)

	ctx := context.Background()
	sess, err := d.Dial(ctx)
	require.NoError(t, err)
	defer sess.Close()

	punches, err := sess.Attendance(ctx)
	require.NoError(t, err)
	require.Len(t, punches, 2)

	require.EqualValues(t, 7, punches[0].UserID)
	require.Equal(t, "2024-01-10 23:58:00", punches[0].Timestamp.Format("2006-01-02 15:04:05"))
	require.NotNil(t, punches[0].DeviceUID)
	require.Equal(t, 12, *punches[0].DeviceUID)
	require.NotNil(t, punches[0].VerifyMethod)
	require.Equal(t, 0, *punches[0].VerifyMethod)

	require.EqualValues(t, 8, punches[1].UserID)
	require.Nil(t, punches[1].StatusCode)
}

func TestUsers_Protobuf(t *testing.T) {
	t.Parallel()

	body, err := structpb.NewStruct(map[string]any{
		"users": []any{
			map[string]any{"user_id": "7", "name": "Ayse Yilmaz"},
			map[string]any{"user_id": 8, "name": " Mehmet "},
			map[string]any{"user_id": "admin", "name": "Console"},
		},
	})
	require.NoError(t, err)
	encoded, err := proto.Marshal(body)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(encoded)
	})
	d := newBridge(t, mux)

	ctx := context.Background()
	sess, err := d.Dial(ctx)
	require.NoError(t, err)

	users, err := sess.Users(ctx)
	require.NoError(t, err)
	require.Equal(t, map[int64]string{7: "Ayse Yilmaz", 8: "Mehmet"}, users)
}

func TestAttendance_ServerErrorIsUnreachable(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/attendance", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "terminal offline", http.StatusBadGateway)
	})
	d := newBridge(t, mux)

	ctx := context.Background()
	sess, err := d.Dial(ctx)
	require.NoError(t, err)

	_, err = sess.Attendance(ctx)
	require.ErrorIs(t, err, device.ErrUnreachable)
}

func TestClearAttendance(t *testing.T) {
	t.Parallel()

	var cleared atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/attendance/clear", func(w http.ResponseWriter, _ *http.Request) {
		cleared.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	d := newBridge(t, mux)

	ctx := context.Background()
	sess, err := d.Dial(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.ClearAttendance(ctx))
	require.EqualValues(t, 1, cleared.Load())
}
