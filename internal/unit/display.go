package unit

type display struct {
	name  string
	color string
}

var statusDisplay = map[Status]display{
	StatusAvailable:          {name: "Available", color: "#10b981"},
	StatusOccupied:           {name: "Occupied", color: "#ef4444"},
	StatusCleaningInProgress: {name: "Cleaning In Progress", color: "#f59e0b"},
	StatusMaintenanceNeeded:  {name: "Maintenance Needed", color: "#6b7280"},
}

var kindDisplay = map[Kind]display{
	KindCapsule: {name: "Capsule", color: "#3b82f6"},
	KindCabin:   {name: "Cabin", color: "#10b981"},
}

const fallbackColor = "#6b7280"

func (s Status) DisplayName() string {
	if d, ok := statusDisplay[s]; ok {
		return d.name
	}
	return string(s)
}

func (s Status) Color() string {
	if d, ok := statusDisplay[s]; ok {
		return d.color
	}
	return fallbackColor
}

func (k Kind) DisplayName() string {
	if d, ok := kindDisplay[k]; ok {
		return d.name
	}
	return string(k)
}

func (k Kind) Color() string {
	if d, ok := kindDisplay[k]; ok {
		return d.color
	}
	return fallbackColor
}
