package objects

// Vehicle is the kind of conveyance a courier uses, with an
// associated average velocity in distance-units (meters) per
// simulated second.
type Vehicle int

const (
	VehicleUnknown Vehicle = iota
	VehicleBicycle
	VehicleMotorcycle
	VehicleCar
	VehicleWalker
)

// averageVelocity in meters/simulated-second.
var averageVelocity = map[Vehicle]float64{
	VehicleBicycle:    4.0,
	VehicleMotorcycle: 8.3,
	VehicleCar:        11.1,
	VehicleWalker:     1.4,
}

// AverageVelocity returns the vehicle's cruising speed in meters per
// simulated second. Unknown vehicles fall back to the motorcycle
// speed, matching the Python reference's default courier vehicle.
func (v Vehicle) AverageVelocity() float64 {
	if speed, ok := averageVelocity[v]; ok {
		return speed
	}
	return averageVelocity[VehicleMotorcycle]
}

func (v Vehicle) String() string {
	switch v {
	case VehicleBicycle:
		return "bicycle"
	case VehicleMotorcycle:
		return "motorcycle"
	case VehicleCar:
		return "car"
	case VehicleWalker:
		return "walker"
	default:
		return "unknown"
	}
}

// VehicleFromLabel maps a data-source string to a Vehicle, defaulting
// to motorcycle for unrecognized labels.
func VehicleFromLabel(label string) Vehicle {
	switch label {
	case "bicycle":
		return VehicleBicycle
	case "motorcycle":
		return VehicleMotorcycle
	case "car":
		return VehicleCar
	case "walker":
		return VehicleWalker
	default:
		return VehicleMotorcycle
	}
}
