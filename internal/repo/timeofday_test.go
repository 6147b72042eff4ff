package repo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", TimeOfDay{9, 0}, false},
		{"23:59", TimeOfDay{23, 59}, false},
		{"10:30:00", TimeOfDay{10, 30}, false},
		{"24:00", TimeOfDay{}, true},
		{"9am", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_JSONAndOn(t *testing.T) {
	b, err := json.Marshal(TimeOfDay{Hour: 9, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(b))

	var td TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"14:30"`), &td))
	assert.Equal(t, 14*60+30, td.Minutes())
	assert.True(t, TimeOfDay{Hour: 9}.Before(td))

	loc := time.FixedZone("ICT", 7*3600)
	at := td.On(2025, time.January, 6, loc)
	assert.Equal(t, time.Date(2025, 1, 6, 7, 30, 0, 0, time.UTC), at.UTC())
}

func TestTimeOfDay_ScanRejectsUnknown(t *testing.T) {
	var td TimeOfDay
	assert.Error(t, td.Scan(42))
}
