package membership

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Epoch values above this are treated as milliseconds. 1e11 seconds is the
// year 5138, so no plausible expiry date is misread.
const millisThreshold = 1e11

// ToInstant converts the timestamp shapes found in imported member records
// into a time.Time: native dates, epoch seconds, epoch millis (told apart by
// magnitude) and {seconds: n} objects from document-store exports. The second
// return is false when the value carries no usable timestamp.
func ToInstant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case primitive.DateTime:
		return t.Time(), true
	case int64:
		return fromEpoch(float64(t))
	case int:
		return fromEpoch(float64(t))
	case float64:
		return fromEpoch(t)
	case map[string]any:
		return ToInstant(t["seconds"])
	case primitive.M:
		return ToInstant(t["seconds"])
	case primitive.D:
		for _, e := range t {
			if e.Key == "seconds" {
				return ToInstant(e.Value)
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func fromEpoch(v float64) (time.Time, bool) {
	if v <= 0 {
		return time.Time{}, false
	}
	if v > millisThreshold {
		return time.UnixMilli(int64(v)), true
	}
	return time.Unix(int64(v), 0), true
}
