package service

import (
	"context"
	"errors"
	"strconv"

	"cdr.dev/slog/v3"
	"github.com/cespare/xxhash/v2"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// IngestSummary counts what one ingestion batch did.
type IngestSummary struct {
	Seen     int `json:"seen"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// IngestService copies terminal punches into the raw store exactly once.
type IngestService struct {
	raw     store.RawPunchStore
	logger  slog.Logger
	metrics *Metrics
}

func NewIngestService(raw store.RawPunchStore, logger slog.Logger, m *Metrics) *IngestService {
	return &IngestService{raw: raw, logger: logger, metrics: m}
}

// Ingest stores every punch not already in the raw store. Duplicates,
// whether within the batch, already stored, or lost to a concurrent
// writer, are skipped. Any other store error is logged and counted as
// failed; the rest of the batch still runs.
func (s *IngestService) Ingest(ctx context.Context, punches []types.Punch) IngestSummary {
	var (
		sum  IngestSummary
		seen = make(map[uint64]struct{}, len(punches))
	)
	for _, p := range punches {
		sum.Seen++
		p.Timestamp = types.WallClock(p.Timestamp)
		uid, ts := p.Key()

		fp := fingerprint(uid, ts)
		if _, dup := seen[fp]; dup {
			sum.Skipped++
			continue
		}
		seen[fp] = struct{}{}

		exists, err := s.raw.PunchExists(ctx, uid, p.Timestamp)
		if err != nil {
			s.logger.Error(ctx, "raw punch lookup failed",
				slog.F("user_id", uid), slog.F("timestamp", ts), slog.Error(err))
			sum.Failed++
			continue
		}
		if exists {
			sum.Skipped++
			continue
		}

		err = s.raw.InsertPunch(ctx, p)
		switch {
		case err == nil:
			sum.Inserted++
			s.logger.Debug(ctx, "raw punch stored",
				slog.F("user_id", uid), slog.F("timestamp", ts),
				slog.F("direction_hint", DirectionHint(p)))
		case errors.Is(err, store.ErrDuplicatePunch):
			sum.Skipped++
		default:
			s.logger.Error(ctx, "raw punch insert failed",
				slog.F("user_id", uid), slog.F("timestamp", ts), slog.Error(err))
			sum.Failed++
		}
	}

	s.metrics.observeIngest(sum)
	s.logger.Info(ctx, "ingest finished",
		slog.F("seen", sum.Seen),
		slog.F("inserted", sum.Inserted),
		slog.F("skipped", sum.Skipped),
		slog.F("failed", sum.Failed),
	)
	return sum
}

func fingerprint(userID int64, ts string) uint64 {
	d := xxhash.New()
	b := strconv.AppendInt(make([]byte, 0, 32), userID, 10)
	b = append(b, '|')
	_, _ = d.Write(b)
	_, _ = d.WriteString(ts)
	return d.Sum64()
}
