package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sweeney/cooling-monitor/internal/control"
	"github.com/sweeney/cooling-monitor/internal/gpio"
	"github.com/sweeney/cooling-monitor/internal/lcd"
	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/metrics"
	"github.com/sweeney/cooling-monitor/internal/mqtt"
	"github.com/sweeney/cooling-monitor/internal/sensor"
	"github.com/sweeney/cooling-monitor/internal/status"
	"github.com/sweeney/cooling-monitor/internal/web"
)

type rig struct {
	loop    *control.Loop
	output  *gpio.FakeOutput
	display *lcd.FakeDisplay
	pub     *mqtt.FakePublisher
	http    *httptest.Server
}

func newRig(t *testing.T, samples ...sensor.Sample) *rig {
	t.Helper()
	store := status.NewStore()
	m := metrics.New()
	logger := zaptest.NewLogger(t)

	r := &rig{
		output:  gpio.NewFakeOutput(),
		display: lcd.NewFakeDisplay(),
		pub:     mqtt.NewFakePublisher(),
	}
	r.loop = control.New(control.Config{
		Interval:    2 * time.Second,
		Threshold:   logic.DefaultThreshold,
		HistorySize: logic.DefaultHistorySize,
	}, control.Deps{
		Sensor:    sensor.NewFakeReader(samples...),
		Actuator:  r.output,
		Display:   r.display,
		Store:     store,
		Publisher: r.pub,
		Metrics:   m,
		Logger:    logger,
	})

	srv := web.New(":0", store, m.Handler(), logger)
	r.http = httptest.NewServer(srv.Handler())
	t.Cleanup(r.http.Close)
	t.Cleanup(r.loop.Shutdown)
	return r
}

func (r *rig) status(t *testing.T) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(r.http.URL + "/data")
	if err != nil {
		t.Fatalf("GET /data: %v", err)
	}
	defer resp.Body.Close()
	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sj
}

// TestIntegrationFullFlow drives sensor -> loop -> store -> HTTP/MQTT/LCD with fakes.
func TestIntegrationFullFlow(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newRig(t,
		sensor.OK(19.5, 45), // below threshold
		sensor.OK(20.0, 45), // at threshold stays off
		sensor.OK(21.2, 46), // COOLING_ON
		sensor.OK(22.0, 47), // on for 2s
		sensor.Fail(sensor.ErrUnavailable),
		sensor.OK(19.0, 44), // off
	)

	sj := r.status(t)
	if sj.Summary != "Normal" || sj.Temperature.Valid {
		t.Fatalf("before first tick: got %+v", sj)
	}

	type want struct {
		on      bool
		onSec   int64
		summary string
	}
	steps := []want{
		{false, 0, "Normal"},
		{false, 0, "Normal"},
		{true, 0, "Cooling"},
		{true, 2, "Cooling"},
		{false, 0, "Normal"},
		{false, 0, "Normal"},
	}

	for i, w := range steps {
		r.loop.Step(start.Add(time.Duration(i) * 2 * time.Second))
		sj := r.status(t)
		if sj.MosfetOn != w.on || sj.MosfetOnSec != w.onSec || sj.Summary != w.summary {
			t.Errorf("tick %d: got on=%v sec=%d summary=%s, want %+v",
				i, sj.MosfetOn, sj.MosfetOnSec, sj.Summary, w)
		}
		if r.output.On != w.on {
			t.Errorf("tick %d: output %v, want %v", i, r.output.On, w.on)
		}
	}

	sj = r.status(t)
	if sj.MaxTemp != logic.Some(22) || sj.MinTemp != logic.Some(19) {
		t.Errorf("stats: max=%+v min=%+v", sj.MaxTemp, sj.MinTemp)
	}
	// (19.5+20+21.2+22+19)/5 = 20.34
	if sj.AvgTemp != logic.Some(20.3) {
		t.Errorf("avg: got %+v, want 20.3", sj.AvgTemp)
	}

	r.loop.Flush()
	types := r.pub.EventTypes()
	if len(types) != 2 || types[0] != logic.EventCoolingOn || types[1] != logic.EventCoolingOff {
		t.Errorf("events: got %v", types)
	}
	if r.pub.Events[0].Temperature != logic.Some(21.2) {
		t.Errorf("COOLING_ON temperature: got %+v", r.pub.Events[0].Temperature)
	}
	if len(r.pub.Telemetry) != len(steps) {
		t.Errorf("telemetry: got %d, want %d", len(r.pub.Telemetry), len(steps))
	}

	if got := r.display.Lines()[1]; got != "Hum:44.0% Normal" {
		t.Errorf("lcd row 1: got %q", got)
	}

	r.loop.Shutdown()
	if r.output.On {
		t.Error("expected output off after shutdown")
	}
	if got := r.display.Lines()[0]; got != "Shutting Down..." {
		t.Errorf("lcd row 0 after shutdown: got %q", got)
	}
}

// TestIntegrationConcurrentReaders polls the HTTP endpoint while the loop
// publishes and checks every response is internally consistent.
func TestIntegrationConcurrentReaders(t *testing.T) {
	var samples []sensor.Sample
	for i := 0; i < 50; i++ {
		samples = append(samples, sensor.OK(18+float64(i%5), 50))
	}
	r := newRig(t, samples...)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				resp, err := http.Get(r.http.URL + "/data")
				if err != nil {
					t.Errorf("GET /data: %v", err)
					return
				}
				var sj status.StatusJSON
				err = json.NewDecoder(resp.Body).Decode(&sj)
				resp.Body.Close()
				if err != nil {
					t.Errorf("decode: %v", err)
					return
				}
				if (sj.Summary == "Cooling") != sj.MosfetOn {
					t.Errorf("torn snapshot: summary=%s mosfet_on=%v", sj.Summary, sj.MosfetOn)
					return
				}
				if sj.MaxTemp.Valid && (sj.AvgTemp.V > sj.MaxTemp.V || sj.AvgTemp.V < sj.MinTemp.V) {
					t.Errorf("avg outside [min, max]: %+v", sj)
					return
				}
			}
		}()
	}

	for i := range samples {
		r.loop.Step(start.Add(time.Duration(i) * 2 * time.Second))
	}
	close(done)
	wg.Wait()
}
