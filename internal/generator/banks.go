package generator

import (
	"sort"
	"strings"
)

// DefaultCategory is used when a category has no bank.
const DefaultCategory = "avionics"

var builtinBanks = map[string][]string{
	"avionics":     {"bus", "controller", "redundant", "telemetry", "atomic", "signal", "synchronization", "logic", "architecture", "distributed", "sensor", "calibration", "avionics", "frequency", "bandwidth", "interface", "protocol"},
	"thermal":      {"heat", "shield", "composite", "reentry", "atmospheric", "protection", "thermal", "integrity", "inspection", "structural", "insulation", "radiation", "ablation", "convection", "conduction", "equilibrium", "gradient"},
	"life-support": {"oxygen", "scrubber", "regenerative", "cycle", "carbon", "dioxide", "sensor", "infrared", "calibrated", "atmosphere", "pressure", "cabin", "humidity", "filtration", "potable", "biomedical", "nitrogen"},
	"propulsion":   {"hypergolic", "fuel", "ignition", "nozzle", "combustion", "instability", "primary", "thrust", "vectoring", "propellant", "oxidizer", "cryogenic", "tankage", "manifold", "pressure", "turbopump", "exhaust"},
	"quantum":      {"entanglement", "relay", "coherent", "communication", "probe", "orbital", "phase", "shift", "keying", "quantum", "encryption", "decoherence", "superposition", "qubit", "teleportation", "interstellar", "nanosecond"},
	"cryogenics":   {"liquid", "hydrogen", "helium", "superfluid", "thermal", "isolation", "vacuum", "jacketed", "dewar", "boil-off", "sublimation", "cryostat", "kelvin", "absolute", "zero", "refrigeration", "cooling"},
	"orbital":      {"apogee", "perigee", "inclination", "eccentricity", "hohmann", "transfer", "trajectory", "delta-v", "burn", "rendezvous", "docking", "ballistic", "gravity", "assist", "injection", "insertion", "geostationary"},
	"robotics":     {"actuator", "effector", "kinematics", "manipulator", "autonomy", "heuristic", "algorithm", "optical", "lidar", "ultrasonic", "haptic", "servomechanism", "feedback", "loop", "torque", "encoder", "chassis"},
	"navigation":   {"sextant", "inertial", "gyroscope", "accelerometer", "dead", "reckoning", "celestial", "coordinates", "azimuth", "elevation", "doppler", "triangulation", "ranging", "waypoint", "vector", "magnitude", "orientation"},
}

// Banks maps a category name to its words. Values are shared and must not
// be modified.
type Banks map[string][]string

// DefaultBanks returns the built-in technical categories.
func DefaultBanks() Banks {
	banks := make(Banks, len(builtinBanks))
	for name, words := range builtinBanks {
		banks[name] = words
	}
	return banks
}

// With returns a copy of b where each non-empty custom bank replaces or
// adds its category.
func (b Banks) With(custom map[string][]string) Banks {
	out := make(Banks, len(b)+len(custom))
	for name, words := range b {
		out[name] = words
	}
	for name, words := range custom {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || len(words) == 0 {
			continue
		}
		out[name] = words
	}
	return out
}

// Has reports whether category has its own bank.
func (b Banks) Has(category string) bool {
	_, ok := b[category]
	return ok
}

// Lookup returns the bank for category, falling back to the default bank.
func (b Banks) Lookup(category string) []string {
	if words, ok := b[category]; ok && len(words) > 0 {
		return words
	}
	if words, ok := b[DefaultCategory]; ok && len(words) > 0 {
		return words
	}
	return builtinBanks[DefaultCategory]
}

// Names returns the sorted category names.
func (b Banks) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
