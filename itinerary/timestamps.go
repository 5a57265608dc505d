package itinerary

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConvertTimestamps walks v and replaces every store-native timestamp with a
// UTC time.Time. Maps, ordered documents and arrays are rebuilt as plain
// map[string]any and []any. Values of any other type pass through unchanged.
func ConvertTimestamps(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return utc(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return utc(*t)
	case primitive.DateTime:
		return utc(t.Time())
	case *primitive.DateTime:
		if t == nil {
			return nil
		}
		return utc(t.Time())
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	case *primitive.Timestamp:
		if t == nil {
			return nil
		}
		return time.Unix(int64(t.T), 0).UTC()
	case map[string]any:
		return convertMap(t)
	case primitive.M:
		return convertMap(t)
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = ConvertTimestamps(e.Value)
		}
		return out
	case []any:
		return convertSlice(t)
	case primitive.A:
		return convertSlice(t)
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = convertMap(m)
		}
		return out
	default:
		return v
	}
}

func convertMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = ConvertTimestamps(val)
	}
	return out
}

func convertSlice(s []any) []any {
	out := make([]any, len(s))
	for i, val := range s {
		out[i] = ConvertTimestamps(val)
	}
	return out
}

// utc drops the monotonic reading and location so equal instants compare
// equal with reflect.DeepEqual.
func utc(t time.Time) time.Time {
	return t.Round(0).UTC()
}
