package blog_test

import (
	"testing"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		pattern string
		want    bool
		wantErr bool
	}{
		{
			name:    "Recent time is within window",
			t:       time.Now().Add(-time.Hour),
			pattern: "24h",
			want:    true,
		},
		{
			name:    "Stale time is outside window",
			t:       time.Now().Add(-48 * time.Hour),
			pattern: "24h",
			want:    false,
		},
		{
			name:    "Invalid pattern errors",
			t:       time.Now(),
			pattern: "one day",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := blog.IsWithinThresholdPeriod(tt.t, tt.pattern)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	outside, err := blog.IsOutsideThresholdPeriod(time.Now().Add(-48*time.Hour), "24h")
	assert.NoError(t, err)
	assert.True(t, outside)

	outside, err = blog.IsOutsideThresholdPeriod(time.Now().Add(-time.Minute), "24h")
	assert.NoError(t, err)
	assert.False(t, outside)

	_, err = blog.IsOutsideThresholdPeriod(time.Now(), "nope")
	assert.Error(t, err)
}
