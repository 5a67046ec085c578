package views

import "github.com/jameshartig/sungrowmon/pkg/types"

// DeviceView is the generic device card.
type DeviceView struct {
	Name       string `json:"name"`
	TypeName   string `json:"typeName"`
	DeviceType int    `json:"deviceType"`
	PsKey      string `json:"psKey"`
	Icon       string `json:"icon"`
	Status     string `json:"status"`
}

// NewDeviceView projects d into its card.
func NewDeviceView(d types.PlantDevice) DeviceView {
	status := "Fault"
	if d.DevFaultStatus == types.FaultStatusDeviceNormal {
		status = "Normal"
	}
	return DeviceView{
		Name:       d.DeviceName,
		TypeName:   d.TypeName,
		DeviceType: d.DeviceType,
		PsKey:      d.PsKey,
		Icon:       types.DeviceType(d.DeviceType).Icon(),
		Status:     status,
	}
}
