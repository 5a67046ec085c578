package types

// Plant is a monitored power station as returned by queryPowerStationList.
type Plant struct {
	PsID                 int     `json:"ps_id"`
	PsName               string  `json:"ps_name"`
	Description          *string `json:"description"`
	PsType               int     `json:"ps_type"`
	OnlineStatus         int     `json:"online_status"`
	ValidFlag            int     `json:"valid_flag"`
	GridConnectionStatus int     `json:"grid_connection_status"`
	InstallDate          string  `json:"install_date"`
	PsLocation           string  `json:"ps_location"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	PsFaultStatus        int     `json:"ps_fault_status"`
	ConnectType          int     `json:"connect_type"`
	UpdateTime           string  `json:"update_time"`
	PsCurrentTimeZone    string  `json:"ps_current_time_zone"`
	GridConnectionTime   *string `json:"grid_connection_time"`
	BuildStatus          int     `json:"build_status"`
	TodayEnergy          string  `json:"today_energy,omitempty"`
}

const (
	// FaultStatusPlantNormal is the ps_fault_status of a healthy plant.
	FaultStatusPlantNormal = 3
	// OnlineStatusOnline is the online_status of a reachable plant.
	OnlineStatusOnline = 1
)

// PlantType is the ps_type code of a plant.
type PlantType int

const (
	PlantTypeUtility            PlantType = 1
	PlantTypeDistributedPV      PlantType = 3
	PlantTypeResidentialPV      PlantType = 4
	PlantTypeResidentialStorage PlantType = 5
	PlantTypeVillage            PlantType = 6
	PlantTypeDistributedStorage PlantType = 7
	PlantTypePovertyAlleviation PlantType = 8
	PlantTypeWind               PlantType = 9
	PlantTypeCommercialStorage  PlantType = 12
)

// String returns the display label, "Unknown" for unmapped codes.
func (t PlantType) String() string {
	switch t {
	case PlantTypeUtility:
		return "Utility Plant"
	case PlantTypeDistributedPV:
		return "Distributed PV"
	case PlantTypeResidentialPV:
		return "Residential PV"
	case PlantTypeResidentialStorage:
		return "Residential Storage"
	case PlantTypeVillage:
		return "Village Plant"
	case PlantTypeDistributedStorage:
		return "Dist. Storage"
	case PlantTypePovertyAlleviation:
		return "Poverty Alleviation"
	case PlantTypeWind:
		return "Wind Power"
	case PlantTypeCommercialStorage:
		return "C&I Storage"
	default:
		return "Unknown"
	}
}
