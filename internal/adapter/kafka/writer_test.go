package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	frozen := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	dw := &domain.DistrictWeek{
		Week:         "2026-01-06",
		State:        "DELHI",
		District:     "NEW DELHI",
		EnrolTotal:   42,
		RiskCategory: domain.RiskCritical,
	}

	msg, err := serializeToMessage(dw)
	require.NoError(t, err)

	assert.Equal(t, []byte("2026-01-06|DELHI|NEW DELHI"), msg.Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "2026-01-06", decoded["week"])
	assert.Equal(t, "DELHI", decoded["state"])
	assert.Equal(t, "NEW DELHI", decoded["district"])
	assert.Equal(t, float64(42), decoded["enrol_total"])
	assert.Equal(t, "Critical", decoded["risk_category"])

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Critical", headers["risk_category"])
	assert.Equal(t, "2026-08-28T12:00:00Z", headers["generated_at"])
}

func TestSerializeToMessageOmitsUndefinedMA4(t *testing.T) {
	dw := &domain.DistrictWeek{Week: "2026-01-06", State: "S", District: "D"}

	msg, err := serializeToMessage(dw)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	_, present := decoded["severity_score_ma4"]
	assert.False(t, present)
}
