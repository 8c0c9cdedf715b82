package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestSLOConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"CollectionSuccessSLO", CollectionSuccessSLO, 0.99},
		{"DataQualitySLO", DataQualitySLO, 0.95},
		{"CycleDurationSLO", CycleDurationSLO, 300.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.value, tt.expected)
			}
		})
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	metric := &io_prometheus_client.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestUpdateCollectionSuccess(t *testing.T) {
	SLOCollectionSuccess.Set(0)

	UpdateCollectionSuccess(0.875)

	if got := gaugeValue(t, SLOCollectionSuccess); got != 0.875 {
		t.Errorf("SLOCollectionSuccess = %v, want 0.875", got)
	}
}

func TestUpdateDataQuality(t *testing.T) {
	SLODataQuality.Set(0)

	UpdateDataQuality(0.9375)

	if got := gaugeValue(t, SLODataQuality); got != 0.9375 {
		t.Errorf("SLODataQuality = %v, want 0.9375", got)
	}
}

func TestUpdateCycleDuration(t *testing.T) {
	SLOCycleDuration.Set(0)

	UpdateCycleDuration(42.5)

	if got := gaugeValue(t, SLOCycleDuration); got != 42.5 {
		t.Errorf("SLOCycleDuration = %v, want 42.5", got)
	}
}

func TestMetricsAreRegistered(t *testing.T) {
	metrics := []prometheus.Collector{
		SLOCollectionSuccess,
		SLODataQuality,
		SLOCycleDuration,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		select {
		case d := <-desc:
			if d == nil {
				t.Error("metric descriptor is nil")
			}
		default:
			t.Error("no descriptor received")
		}
	}
}

func TestSLOTargetsAreReasonable(t *testing.T) {
	if CollectionSuccessSLO < 0.9 || CollectionSuccessSLO > 1.0 {
		t.Errorf("CollectionSuccessSLO = %v, should be between 0.9 and 1", CollectionSuccessSLO)
	}
	if DataQualitySLO < 0.5 || DataQualitySLO > 1.0 {
		t.Errorf("DataQualitySLO = %v, should be between 0.5 and 1", DataQualitySLO)
	}
	if CycleDurationSLO <= 0 || CycleDurationSLO > 3600 {
		t.Errorf("CycleDurationSLO = %v, should be positive and at most an hour", CycleDurationSLO)
	}
}
