// Package httpdevice talks to a terminal bridge: a sidecar that speaks
// the terminal's vendor protocol and exposes users and punches over
// HTTP as JSON or protobuf.
package httpdevice

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cdr.dev/slog/v3"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/device"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

const (
	pathPing       = "/v1/ping"
	pathUsers      = "/v1/users"
	pathAttendance = "/v1/attendance"
	pathClear      = "/v1/attendance/clear"

	defaultTimeout = 10 * time.Second
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  slog.Logger
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Dialer opens bridge sessions. It is safe for concurrent use.
type Dialer struct {
	baseURL string
	client  *http.Client
	logger  slog.Logger
}

func New(opts Options) *Dialer {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Dialer{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		logger:  opts.Logger,
	}
}

// Dial probes the bridge. Any failure is a device.ErrUnreachable.
func (d *Dialer) Dial(ctx context.Context) (device.Device, error) {
	resp, err := d.do(ctx, http.MethodGet, pathPing)
	if err != nil {
		return nil, device.Unreachable(xerrors.Errorf("ping %s: %w", d.baseURL, err))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return &session{d: d}, nil
}

func (d *Dialer) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, nil)
	if err != nil {
		return nil, xerrors.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/x-protobuf, application/json;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, xerrors.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return resp, nil
}

func (d *Dialer) get(ctx context.Context, path string, v any) error {
	resp, err := d.do(ctx, http.MethodGet, path)
	if err != nil {
		return device.Unreachable(err)
	}
	defer resp.Body.Close()
	if err := decodeBody(resp, v); err != nil {
		return device.Unreachable(xerrors.Errorf("GET %s: %w", path, err))
	}
	return nil
}

type session struct {
	d *Dialer
}

type usersPayload struct {
	Users []struct {
		UserID flexID `json:"user_id"`
		Name   string `json:"name"`
	} `json:"users"`
}

type attendancePayload struct {
	Attendance []struct {
		UserID    flexID `json:"user_id"`
		Timestamp string `json:"timestamp"`
		UID       *int   `json:"uid"`
		Status    *int   `json:"status"`
		Punch     *int   `json:"punch"`
	} `json:"attendance"`
}

// Users skips entries whose id is not numeric.
func (s *session) Users(ctx context.Context) (map[int64]string, error) {
	var p usersPayload
	if err := s.d.get(ctx, pathUsers, &p); err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(p.Users))
	for _, u := range p.Users {
		id, err := strconv.ParseInt(strings.TrimSpace(string(u.UserID)), 10, 64)
		if err != nil {
			s.d.logger.Warn(ctx, "skipping terminal user with non-numeric id",
				slog.F("user_id", string(u.UserID)))
			continue
		}
		out[id] = strings.TrimSpace(u.Name)
	}
	return out, nil
}

// Attendance skips entries with a non-numeric user id or an
// unparseable timestamp; the rest of the log is returned.
func (s *session) Attendance(ctx context.Context) ([]types.Punch, error) {
	var p attendancePayload
	if err := s.d.get(ctx, pathAttendance, &p); err != nil {
		return nil, err
	}

	out := make([]types.Punch, 0, len(p.Attendance))
	for _, a := range p.Attendance {
		id, err := strconv.ParseInt(strings.TrimSpace(string(a.UserID)), 10, 64)
		if err != nil {
			s.d.logger.Warn(ctx, "skipping punch with non-numeric user id",
				slog.F("user_id", string(a.UserID)), slog.F("timestamp", a.Timestamp))
			continue
		}
		ts, err := types.ParseTimestamp(strings.TrimSpace(a.Timestamp))
		if err != nil {
			s.d.logger.Warn(ctx, "skipping punch with malformed timestamp",
				slog.F("user_id", id), slog.F("timestamp", a.Timestamp), slog.Error(err))
			continue
		}
		out = append(out, types.Punch{
			UserID:       id,
			Timestamp:    ts,
			DeviceUID:    a.UID,
			StatusCode:   a.Status,
			VerifyMethod: a.Punch,
		})
	}
	return out, nil
}

func (s *session) ClearAttendance(ctx context.Context) error {
	resp, err := s.d.do(ctx, http.MethodPost, pathClear)
	if err != nil {
		return xerrors.Errorf("clear attendance: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Close is a no-op; bridge requests are stateless.
func (*session) Close() error { return nil }
