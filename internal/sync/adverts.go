package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/store"
	"github.com/sellerops/wbsync/internal/wbapi"
)

const advertStatsPeriod = 30 // days

// SyncAdverts refreshes the campaign list, then pulls full stats for active,
// paused and finished campaigns in fixed-size id batches. The stats endpoint
// tolerates roughly one batch per credential per pacing interval, so batches
// are spaced out instead of hammered.
func (s *Service) SyncAdverts(ctx context.Context, t model.Tenant) (Result, error) {
	adverts, err := s.api.Adverts(ctx, t.Token)
	if err != nil {
		return Result{}, err
	}

	var campaigns []model.Advert
	var ids []int64
	yesterday := time.Now().AddDate(0, 0, -1)
	for _, a := range adverts {
		switch a.Status {
		case model.AdvertStatusActive, model.AdvertStatusPaused:
		case model.AdvertStatusFinished:
			// finished campaigns only while their numbers can still move
			if parseTime(a.ChangeTime).Before(yesterday) {
				continue
			}
		default:
			continue
		}
		campaigns = append(campaigns, model.Advert{
			TenantID:   t.ID,
			AdvertID:   a.AdvertID,
			Status:     a.Status,
			Type:       a.Type,
			ChangeTime: parseTime(a.ChangeTime),
		})
		ids = append(ids, a.AdvertID)
	}

	rep, err := store.Write(ctx, s.writer, store.Adverts, campaigns)
	if err != nil {
		return Result{Rows: rep.Written}, err
	}
	result := Result{Rows: rep.Written}

	to := time.Now()
	from := to.AddDate(0, 0, -advertStatsPeriod)

	for start := 0; start < len(ids); start += s.cfg.AdvertBatch {
		end := start + s.cfg.AdvertBatch
		if end > len(ids) {
			end = len(ids)
		}
		if start > 0 {
			if err := s.pause(ctx, s.cfg.AdvertInterval); err != nil {
				return result, err
			}
		}

		stats, err := s.api.AdvertFullStats(ctx, t.Token, ids[start:end], from, to)
		if err != nil {
			return result, err
		}

		rows := flattenAdvertStats(stats)
		s.log.Debug("advert stats batch",
			zap.Int64("tenant", t.ID),
			zap.Int("campaigns", end-start),
			zap.Int("rows", len(rows)))

		rep, err := store.Write(ctx, s.writer, store.AdvertStats, rows)
		result.Rows += rep.Written
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// flattenAdvertStats unrolls the nested day/app/nm response into flat rows.
func flattenAdvertStats(stats []wbapi.AdvertStat) []model.AdvertStat {
	var rows []model.AdvertStat
	for _, st := range stats {
		for _, day := range st.Days {
			date := parseTime(day.Date)
			for _, app := range day.Apps {
				for _, nm := range app.Nms {
					rows = append(rows, model.AdvertStat{
						AdvertID: st.AdvertID,
						StatDate: date,
						AppType:  app.AppType,
						NmID:     nm.NmID,
						Orders:   nm.Orders,
						Atbs:     nm.Atbs,
						Canceled: nm.Canceled,
						Clicks:   nm.Clicks,
						Cpc:      nm.Cpc,
						Cr:       nm.Cr,
						Ctr:      nm.Ctr,
						Shks:     nm.Shks,
						SumCost:  nm.Sum,
						SumPrice: nm.SumPrice,
						Views:    nm.Views,
					})
				}
			}
		}
	}
	return rows
}

func (s *Service) pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
