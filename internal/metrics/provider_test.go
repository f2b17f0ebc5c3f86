package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProvider_StatusLabel(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("rekognition", "detect_labels", "success"))
	ObserveProvider("rekognition", "detect_labels", time.Now(), nil)
	after := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("rekognition", "detect_labels", "success"))
	if after-before != 1 {
		t.Errorf("expected success counter +1, got %f", after-before)
	}

	before = testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("lex", "post_text", "error"))
	ObserveProvider("lex", "post_text", time.Now(), errors.New("throttled"))
	after = testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("lex", "post_text", "error"))
	if after-before != 1 {
		t.Errorf("expected error counter +1, got %f", after-before)
	}

	if testutil.CollectAndCount(ProviderRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterProviderMetrics()
	RegisterProviderMetrics()
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()
}
