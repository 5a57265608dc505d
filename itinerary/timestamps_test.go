package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConvertTimestamps_Nested(t *testing.T) {
	at := time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC)
	dt := primitive.NewDateTimeFromTime(at)

	in := bson.M{
		"createdAt": dt,
		"days": bson.A{
			bson.D{{Key: "date", Value: dt}, {Key: "title", Value: "x"}},
			bson.M{"nested": bson.A{bson.M{"when": &dt}}},
		},
		"count": int32(3),
	}

	out, ok := ConvertTimestamps(in).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, at, out["createdAt"])
	assert.Equal(t, int32(3), out["count"])

	days, ok := out["days"].([]any)
	require.True(t, ok)
	require.Len(t, days, 2)

	first, ok := days[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, at, first["date"])
	assert.Equal(t, "x", first["title"])

	second := days[1].(map[string]any)
	nested := second["nested"].([]any)
	assert.Equal(t, at, nested[0].(map[string]any)["when"])
}

func TestConvertTimestamps_Scalars(t *testing.T) {
	local := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	got := ConvertTimestamps(local)
	assert.Equal(t, time.Date(2025, 1, 1, 17, 0, 0, 0, time.UTC), got)

	ts := primitive.Timestamp{T: 1700000000, I: 1}
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ConvertTimestamps(ts))

	var nilTime *time.Time
	assert.Nil(t, ConvertTimestamps(nilTime))
	assert.Nil(t, ConvertTimestamps(nil))

	assert.Equal(t, "2025-01-01", ConvertTimestamps("2025-01-01"))
	assert.Equal(t, 42, ConvertTimestamps(42))
}

func TestConvertTimestamps_StripsMonotonic(t *testing.T) {
	now := time.Now()
	got, ok := ConvertTimestamps(now).(time.Time)
	require.True(t, ok)
	assert.Equal(t, now.Round(0).UTC(), got)
	assert.True(t, now.Equal(got))
}

func TestConvertTimestamps_DoesNotMutateInput(t *testing.T) {
	dt := primitive.NewDateTimeFromTime(time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC))
	in := map[string]any{"at": dt}

	ConvertTimestamps(in)
	assert.Equal(t, dt, in["at"])
}
