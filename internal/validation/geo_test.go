package validation

import (
	"strings"
	"testing"

	"skatespot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBoundingBox(t *testing.T) {
	tests := []struct {
		name                     string
		west, south, east, north float64
		wantErr                  bool
	}{
		{"Valid", -114.2, 50.9, -113.9, 51.2, false},
		{"Point Sized", -114.0, 51.0, -114.0, 51.0, false},
		{"West Greater Than East", -113.9, 50.9, -114.2, 51.2, true},
		{"South Greater Than North", -114.2, 51.2, -113.9, 50.9, true},
		{"West Out Of Range", -181, 50.9, -113.9, 51.2, true},
		{"North Out Of Range", -114.2, 50.9, -113.9, 91, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBoundingBox(tt.west, tt.south, tt.east, tt.north)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Every rejection carries the VALIDATION_ERROR code so clients see one error
// shape regardless of which rule fired.
func TestRejectionsCarryValidationCode(t *testing.T) {
	rejections := []error{
		ValidateBoundingBox(-113.9, 50.9, -114.2, 51.2),
		ValidatePoint(models.Point{Lon: 181, Lat: 51.04}),
		ValidateVoteValue(0),
		ValidateSpotName(""),
		ValidateCommentContent(""),
	}
	for _, err := range rejections {
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}

func TestValidatePoint(t *testing.T) {
	assert.NoError(t, ValidatePoint(models.Point{Lon: -114.07, Lat: 51.04}))
	assert.NoError(t, ValidatePoint(models.Point{Lon: 180, Lat: -90}))
	assert.Error(t, ValidatePoint(models.Point{Lon: 181, Lat: 51.04}))
	assert.Error(t, ValidatePoint(models.Point{Lon: -114.07, Lat: -90.5}))
	// swapped lon/lat is the classic client bug
	assert.Error(t, ValidatePoint(models.Point{Lon: 51.04, Lat: -114.07}))
}

func TestValidateVoteValue(t *testing.T) {
	assert.NoError(t, ValidateVoteValue(1))
	assert.NoError(t, ValidateVoteValue(-1))
	assert.Error(t, ValidateVoteValue(0))
	assert.Error(t, ValidateVoteValue(2))
	assert.Error(t, ValidateVoteValue(-5))
}

func TestValidateSpotName(t *testing.T) {
	assert.NoError(t, ValidateSpotName("Downtown Ledges"))
	assert.Error(t, ValidateSpotName(""))
	assert.Error(t, ValidateSpotName("   "))
	assert.Error(t, ValidateSpotName(strings.Repeat("x", 101)))
	assert.NoError(t, ValidateSpotName(strings.Repeat("x", 100)))
}

func TestValidateCommentContent(t *testing.T) {
	assert.NoError(t, ValidateCommentContent("kinked rail, bring wax"))
	assert.Error(t, ValidateCommentContent(""))
	assert.Error(t, ValidateCommentContent("  \n "))
}
