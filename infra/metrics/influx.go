package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
	"github.com/mjarreta/parkd/infra/logger"
)

// InfluxSink writes facility observations to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTicket writes the settled ticket as a point.
func (s *InfluxSink) RecordTicket(t model.Ticket) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("parking_ticket").
		AddTag("zone", t.ZoneID).
		AddTag("spot", t.SpotID).
		AddTag("ticket_id", t.ID).
		AddField("fee", round3(t.Fee)).
		AddField("duration_minutes", round3(t.Duration().Minutes())).
		SetTime(t.ExitTime)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOccupancy writes one point per zone sample.
func (s *InfluxSink) RecordOccupancy(samples []coremetrics.OccupancySample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, smp := range samples {
		p := write.NewPointWithMeasurement("zone_occupancy").
			AddTag("zone", smp.ZoneID).
			AddField("total", smp.Total).
			AddField("occupied", smp.Occupied).
			AddField("reserved", smp.Reserved).
			AddField("available", smp.Available).
			SetTime(smp.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
