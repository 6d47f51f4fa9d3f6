package sensors

// Profile adjusts a location baseline for the siting of a sensor.
type Profile struct {
	PM25Multiplier float64
	PM25Offset     float64
	NoiseOffset    float64
}

// Sensor types with a dedicated profile.
const (
	TypeIndustrial    = "industrial"
	TypeTraffic       = "traffic"
	TypeResidential   = "residential"
	TypeEnvironmental = "environmental"
)

var profiles = map[string]Profile{
	TypeIndustrial:    {PM25Multiplier: 1.2, PM25Offset: 10, NoiseOffset: 5},
	TypeTraffic:       {PM25Multiplier: 1.1, PM25Offset: 5, NoiseOffset: 10},
	TypeResidential:   {PM25Multiplier: 0.9, PM25Offset: -2, NoiseOffset: -5},
	TypeEnvironmental: {PM25Multiplier: 0.6, PM25Offset: -10, NoiseOffset: -10},
}

// ProfileFor returns the profile for a sensor type. Unknown types, including
// the empty string, fall back to residential.
func ProfileFor(sensorType string) Profile {
	if p, ok := profiles[sensorType]; ok {
		return p
	}
	return profiles[TypeResidential]
}
