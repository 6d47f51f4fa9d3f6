// Package sensors loads the static sensor registry and enriches it with live
// simulated values for map display.
package sensors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Descriptor is a static sensor entry from the registry file.
type Descriptor struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Type     string  `json:"type"`
	Location string  `json:"location,omitempty"`
}

// DefaultSensor stands in for the registry when no file is present.
var DefaultSensor = Descriptor{
	ID:       "sensor_default",
	Name:     "Primary Station",
	Lat:      11.2588,
	Lon:      75.7804,
	Type:     "multi-sensor",
	Location: "Kozhikode",
}

// Registry is the loaded sensor list. Default is true when the file was
// missing and DefaultSensor was substituted.
type Registry struct {
	Sensors []Descriptor
	Default bool
}

// LoadRegistry reads a JSON array of descriptors from path. A missing file
// yields the default sensor; an unreadable or malformed file is an error.
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Registry{Sensors: []Descriptor{DefaultSensor}, Default: true}, nil
	}
	if err != nil {
		return Registry{}, fmt.Errorf("read sensor registry: %w", err)
	}

	var sensors []Descriptor
	if err := json.Unmarshal(data, &sensors); err != nil {
		return Registry{}, fmt.Errorf("parse sensor registry %s: %w", path, err)
	}
	return Registry{Sensors: sensors}, nil
}
