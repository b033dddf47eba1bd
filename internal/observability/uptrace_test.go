package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/squad-predictor/internal/config"
)

func TestInitUptrace_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitUptrace(config.Config{UptraceEnabled: false}, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitUptrace_EnabledWithoutDSNIsNoop(t *testing.T) {
	shutdown, err := InitUptrace(config.Config{UptraceEnabled: true, UptraceDSN: "  "}, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
