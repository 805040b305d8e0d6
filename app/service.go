// Package app wires the facility service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mjarreta/parkd/api/lotapi"
	"github.com/mjarreta/parkd/config"
	"github.com/mjarreta/parkd/core/billing"
	"github.com/mjarreta/parkd/core/eventlog"
	"github.com/mjarreta/parkd/core/events"
	"github.com/mjarreta/parkd/core/lot"
	"github.com/mjarreta/parkd/core/loyalty"
	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
	"github.com/mjarreta/parkd/core/notify"
	"github.com/mjarreta/parkd/infra/logger"
	"github.com/mjarreta/parkd/infra/metrics"
	"github.com/mjarreta/parkd/infra/mqtt"
	"github.com/mjarreta/parkd/internal/eventbus"
)

// Service orchestrates the allocator and its collaborators.
type Service struct {
	Allocator *lot.Allocator
	Billing   *billing.System
	Loyalty   *loyalty.Ledger

	bus      *eventbus.Bus[events.Event]
	store    eventlog.Store
	notifier *mqtt.Notifier
	handler  http.Handler
	log      logger.Logger

	apiAddr       string
	promEnabled   bool
	promPort      string
	sampleEvery   time.Duration
	sweepEvery    time.Duration
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	billSys := billing.NewSystem(logger.New("billing"))
	var payments lotapi.PaymentProcessor
	if cfg.Billing.Processor != "" {
		proc, err := billing.NewProcessor(cfg.Billing.Processor)
		if err != nil {
			return nil, fmt.Errorf("payment processor: %w", err)
		}
		billSys.SetProcessor(proc)
		payments = billSys
	}

	alloc, err := lot.NewAllocator(cfg.Facility.Name, billSys, logger.New("allocator"))
	if err != nil {
		return nil, fmt.Errorf("allocator: %w", err)
	}
	if err := buildFacility(alloc, billSys, cfg.Facility); err != nil {
		return nil, fmt.Errorf("facility layout: %w", err)
	}
	if cfg.Facility.ViolationPenalty > 0 {
		alloc.SetViolationPenalty(cfg.Facility.ViolationPenalty)
	}

	ledger := loyalty.NewLedger()
	alloc.SetLoyalty(ledger)

	svc := &Service{
		Allocator:   alloc,
		Billing:     billSys,
		Loyalty:     ledger,
		log:         logg,
		apiAddr:     cfg.API.Addr,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		sampleEvery: time.Duration(cfg.Metrics.SampleIntervalSeconds) * time.Second,
		sweepEvery:  time.Duration(cfg.API.ViolationSweepSeconds) * time.Second,
	}

	switch cfg.Notifier.Backend {
	case "mqtt":
		n, err := mqtt.NewNotifier(cfg.Notifier.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.notifier = n
		alloc.SetNotifier(n)
	default:
		alloc.SetNotifier(notify.LogNotifier{Log: logger.New("notify")})
	}

	store, err := openEventStore(cfg.EventLog)
	if err != nil {
		return nil, fmt.Errorf("event log: %w", err)
	}
	svc.store = store
	alloc.SetEventRecorder(eventlog.NewRecorder(store, logger.New("eventlog")))

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	if len(sinks) == 1 {
		alloc.SetMetricsSink(sinks[0])
	} else if len(sinks) > 1 {
		alloc.SetMetricsSink(metrics.NewMultiSink(sinks...))
	}

	svc.bus = eventbus.New[events.Event]()
	alloc.SetEventBus(svc.bus)

	svc.handler = lotapi.NewHandler(alloc, payments, []byte(cfg.API.QRSecret))
	return svc, nil
}

// buildFacility registers zones and spots from the layout config.
func buildFacility(alloc *lot.Allocator, billSys *billing.System, cfg config.FacilityConfig) error {
	for _, zc := range cfg.Zones {
		zone := lot.NewZone(zc.ID, zc.Name)
		for _, sc := range zc.Spots {
			kind, err := model.ParseSpotKind(sc.Kind)
			if err != nil {
				return err
			}
			var spot *model.Spot
			if sc.Charging != nil {
				spot = model.NewSpotWithCharging(sc.ID, kind, *sc.Charging)
			} else {
				spot = model.NewSpot(sc.ID, kind)
			}
			if err := zone.AddSpot(spot); err != nil {
				return err
			}
		}
		if zc.Pricing != nil {
			rule := billing.PricingRule{
				HourlyRate:     zc.Pricing.HourlyRate,
				PeakMultiplier: zc.Pricing.PeakMultiplier,
				DailyMax:       zc.Pricing.DailyMax,
			}
			billSys.SetZoneRule(zc.ID, rule)
			zone.SetPricingRef(rule)
		}
		if err := alloc.AddZone(zone); err != nil {
			return err
		}
	}
	return nil
}

func openEventStore(cfg config.EventLogConfig) (eventlog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return eventlog.NewSQLiteStore(cfg.Path)
	default:
		return eventlog.NewJSONLStore(cfg.Path)
	}
}

// Run starts the HTTP API and the background loops, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.sampleEvery > 0 {
		go s.sampleOccupancy(ctx)
	}
	if s.sweepEvery > 0 {
		go s.sweepViolations(ctx)
	}
	go s.traceEvents()

	srv := &http.Server{Addr: s.apiAddr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// traceEvents logs every bus event at debug level until the bus closes.
func (s *Service) traceEvents() {
	sub := s.bus.Subscribe()
	for e := range sub {
		s.log.Debugf("event %s", e.EventName())
	}
}

// sampleOccupancy periodically pushes zone occupancy to the sink.
func (s *Service) sampleOccupancy(ctx context.Context) {
	ticker := time.NewTicker(s.sampleEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Allocator.RecordOccupancy(); err != nil {
				s.log.Warnf("occupancy sample: %v", err)
			}
		}
	}
}

// sweepViolations periodically checks occupied spots for violations.
func (s *Service) sweepViolations(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if found := s.Allocator.CheckViolations(); len(found) > 0 {
				s.log.Warnf("violation sweep found %d new violations", len(found))
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.notifier != nil {
		s.notifier.Disconnect()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
