package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iudanet/ground/internal/models"
)

// IDPattern определяет допустимый формат идентификатора документа
// Латинские буквы, цифры, '-' и '_' (UUID и идентификаторы сервера)
// Длина: 1-128 символов
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// MaxIDLen максимальная длина идентификатора
const MaxIDLen = 128

// ValidateID проверяет идентификатор проекта, слоя, feature или observation.
// kind используется в тексте ошибки
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLen {
		return fmt.Errorf("%s id must not exceed %d characters", kind, MaxIDLen)
	}

	if !IDPattern.MatchString(id) {
		return fmt.Errorf("%s id can only contain letters, numbers, '-' and '_'", kind)
	}

	return nil
}

// ValidateBounds проверяет прямоугольник области: широта -90..90, долгота -180..180,
// south <= north и west <= east
func ValidateBounds(b models.Bounds) error {
	for _, lat := range []float64{b.South, b.North} {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("latitude %g out of range [-90, 90]", lat)
		}
	}
	for _, lng := range []float64{b.West, b.East} {
		if lng < -180 || lng > 180 {
			return fmt.Errorf("longitude %g out of range [-180, 180]", lng)
		}
	}

	if b.South > b.North {
		return fmt.Errorf("south %g is north of north %g", b.South, b.North)
	}
	if b.West > b.East {
		return fmt.Errorf("west %g is east of east %g", b.West, b.East)
	}

	return nil
}

// ParseBounds разбирает строку "south,west,north,east" и проверяет результат
func ParseBounds(s string) (models.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.Bounds{}, fmt.Errorf("bounds must be south,west,north,east, got %q", s)
	}

	var values [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.Bounds{}, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		values[i] = v
	}

	b := models.Bounds{South: values[0], West: values[1], North: values[2], East: values[3]}
	if err := ValidateBounds(b); err != nil {
		return models.Bounds{}, err
	}
	return b, nil
}

// ParsePoint разбирает строку "lat,lng"
func ParsePoint(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("point must be lat,lng, got %q", s)
	}

	if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	if lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	if err := ValidateBounds(models.Bounds{South: lat, West: lng, North: lat, East: lng}); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}
