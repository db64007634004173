// Package validation contains request payload validation helpers.
package validation

import (
	"fmt"
	"strings"

	"skatespot/internal/models"
)

const maxSpotNameLen = 100

// ValidateBoundingBox rejects degenerate or inverted boxes before any query
// runs. Coordinates are in degrees, WGS-84.
func ValidateBoundingBox(west, south, east, north float64) error {
	if west > east {
		return models.NewValidationError("bounding box west must not be greater than east")
	}
	if south > north {
		return models.NewValidationError("bounding box south must not be greater than north")
	}
	if west < -180 || east > 180 || south < -90 || north > 90 {
		return models.NewValidationError("bounding box coordinates out of range")
	}
	return nil
}

// ValidatePoint checks that a GeoJSON point carries plausible WGS-84
// coordinates in (longitude, latitude) order.
func ValidatePoint(p models.Point) error {
	if p.Lon < -180 || p.Lon > 180 {
		return models.NewValidationError(fmt.Sprintf("longitude %v out of range [-180, 180]", p.Lon))
	}
	if p.Lat < -90 || p.Lat > 90 {
		return models.NewValidationError(fmt.Sprintf("latitude %v out of range [-90, 90]", p.Lat))
	}
	return nil
}

// ValidateVoteValue accepts exactly +1 or -1.
func ValidateVoteValue(v int) error {
	if v != 1 && v != -1 {
		return models.NewValidationError("vote value must be 1 or -1")
	}
	return nil
}

// ValidateSpotName checks the required name field.
func ValidateSpotName(name string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name is required")
	}
	if len(name) > maxSpotNameLen {
		return models.NewValidationError(fmt.Sprintf("name too long (max %d characters)", maxSpotNameLen))
	}
	return nil
}

// ValidateCommentContent checks the required content field.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content is required")
	}
	return nil
}
