package types

import "strconv"

// PlantDevice is a device attached to a plant as returned by getDeviceListByPsId.
type PlantDevice struct {
	UUID               int    `json:"uuid"`
	PsKey              string `json:"ps_key"`
	DeviceSN           string `json:"device_sn"`
	DeviceName         string `json:"device_name"`
	DeviceType         int    `json:"device_type"`
	TypeName           string `json:"type_name"`
	DeviceModelID      int    `json:"device_model_id"`
	DeviceModelCode    string `json:"device_model_code"`
	DevFaultStatus     int    `json:"dev_fault_status"`
	DevStatus          string `json:"dev_status"`
	ClaimState         int    `json:"claim_state"`
	DeviceCode         int    `json:"device_code"`
	ChnnlID            int    `json:"chnnl_id"`
	CommunicationDevSN string `json:"communication_dev_sn"`
	PsID               int    `json:"ps_id"`
}

// Key returns a display key that is unique within a device list. It is the
// uuid when set and the serial number otherwise.
func (d PlantDevice) Key() string {
	if d.UUID != 0 {
		return strconv.Itoa(d.UUID)
	}
	return d.DeviceSN
}

// IsBattery reports whether the device should be rendered as a battery.
func (d PlantDevice) IsBattery() bool {
	return DeviceType(d.DeviceType) == DeviceTypeBattery
}

// FaultStatusDeviceNormal is the dev_fault_status of a healthy device.
const FaultStatusDeviceNormal = 4

// DeviceType is the device_type code of a device.
type DeviceType int

const (
	DeviceTypeInverter       DeviceType = 1
	DeviceTypeGridConnection DeviceType = 3
	DeviceTypeCombinerBox    DeviceType = 4
	DeviceTypeMeteoStation   DeviceType = 5
	DeviceTypeMeter          DeviceType = 7
	DeviceTypeDataLogger     DeviceType = 9
	DeviceTypePlant          DeviceType = 11
	DeviceTypeEnergyStorage  DeviceType = 14
	DeviceTypeUnit           DeviceType = 17
	DeviceTypeOptimizer      DeviceType = 41
	DeviceTypeBattery        DeviceType = 43
	DeviceTypeCharger        DeviceType = 51
	DeviceTypeMicroinverter  DeviceType = 55
)

// DeviceIconDefault is used for every device type without its own icon.
const DeviceIconDefault = "box"

// Icon returns the icon name for the device type.
func (t DeviceType) Icon() string {
	switch t {
	case DeviceTypeInverter:
		return "zap"
	case DeviceTypeGridConnection:
		return "power"
	case DeviceTypeCombinerBox:
		return "boxes"
	case DeviceTypeMeteoStation:
		return "cloud-sun"
	case DeviceTypeMeter:
		return "gauge"
	case DeviceTypeDataLogger:
		return "cpu"
	case DeviceTypePlant:
		return "factory"
	case DeviceTypeEnergyStorage:
		return "home"
	case DeviceTypeUnit:
		return "container"
	case DeviceTypeOptimizer:
		return "settings"
	case DeviceTypeBattery:
		return "battery"
	case DeviceTypeCharger:
		return "fuel"
	case DeviceTypeMicroinverter:
		return "sun"
	default:
		return DeviceIconDefault
	}
}

// String returns the human readable device type.
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeInverter:
		return "Inverter"
	case DeviceTypeGridConnection:
		return "Grid-Connection Point"
	case DeviceTypeCombinerBox:
		return "Combiner Box"
	case DeviceTypeMeteoStation:
		return "Meteo Station"
	case DeviceTypeMeter:
		return "Meter"
	case DeviceTypeDataLogger:
		return "Data Logger"
	case DeviceTypePlant:
		return "Plant"
	case DeviceTypeEnergyStorage:
		return "Energy Storage System"
	case DeviceTypeUnit:
		return "Unit"
	case DeviceTypeOptimizer:
		return "Optimizer"
	case DeviceTypeBattery:
		return "Battery"
	case DeviceTypeCharger:
		return "Charger"
	case DeviceTypeMicroinverter:
		return "Microinverter"
	default:
		return "Device"
	}
}

// PointBatterySOC is the telemetry point carrying battery state-of-charge.
const PointBatterySOC = 58604

// DevicePoint maps "p"+pointID to the point's value as a numeric string.
type DevicePoint map[string]string

// PointKey returns the DevicePoint key for a point id.
func PointKey(pointID int) string {
	return "p" + strconv.Itoa(pointID)
}

// Value returns the raw value for a point id.
func (p DevicePoint) Value(pointID int) (string, bool) {
	v, ok := p[PointKey(pointID)]
	return v, ok
}
