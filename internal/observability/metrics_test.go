package observability

import (
	"testing"
	"time"

	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordFrame(8 * time.Millisecond)
	RecordPhysicsStep()
	RecordSessionTransition("ready", "starting")
	RecordScriptInit("ok")
	RecordScriptInit("failed")
	RecordScriptDispose()
	RecordHookPanic("update")
	RecordHTTPRequest("xrsim", "GET", "/healthz", 200, 12*time.Millisecond)

	log.Info().Msg("observability/metrics: registration idempotent and recording paths executed")
}
