package views

import (
	"strconv"
	"strings"

	"github.com/jameshartig/sungrowmon/pkg/types"
)

// NoPlantsMessage is shown instead of an empty plant grid.
const NoPlantsMessage = "No plants found."

// PlantCard is one plant in the plant list.
type PlantCard struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	DailyYield string `json:"dailyYield"`
}

// NewPlantCard projects p into its card.
func NewPlantCard(p types.Plant) PlantCard {
	status := "Attention"
	if p.PsFaultStatus == types.FaultStatusPlantNormal {
		status = "Normal"
	}
	yield := p.TodayEnergy
	if yield == "" {
		yield = "0"
	}
	return PlantCard{
		ID:         p.PsID,
		Name:       p.PsName,
		Location:   p.PsLocation,
		Status:     status,
		DailyYield: yield + " kWh",
	}
}

// PlantList is the plant grid.
type PlantList struct {
	Cards        []PlantCard `json:"cards"`
	Empty        bool        `json:"empty"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
}

// NewPlantList renders plants in order. A nil or empty list renders the
// NoPlantsMessage.
func NewPlantList(plants []types.Plant) PlantList {
	cards := make([]PlantCard, len(plants))
	for i, p := range plants {
		cards[i] = NewPlantCard(p)
	}
	l := PlantList{Cards: cards}
	if len(cards) == 0 {
		l.Empty = true
		l.EmptyMessage = NoPlantsMessage
	}
	return l
}

// DetailRow is one labeled attribute of a plant.
type DetailRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	IsStatus bool   `json:"isStatus,omitempty"`
}

// PlantDetails is the detail page of the selected plant.
type PlantDetails struct {
	PsID    int            `json:"psId"`
	Rows    []DetailRow    `json:"rows"`
	Devices DeviceListView `json:"devices"`
}

// NewPlantDetails projects p and mounts the given device list view under it.
func NewPlantDetails(p types.Plant, devices DeviceListView) PlantDetails {
	status := "Fault"
	if p.PsFaultStatus == types.FaultStatusPlantNormal {
		status = "Normal"
	}
	online := "Offline"
	if p.OnlineStatus == types.OnlineStatusOnline {
		online = "Online"
	}
	return PlantDetails{
		PsID: p.PsID,
		Rows: []DetailRow{
			{Label: "ID", Value: strconv.Itoa(p.PsID)},
			{Label: "Name", Value: p.PsName},
			{Label: "Location", Value: p.PsLocation},
			{Label: "Type", Value: types.PlantType(p.PsType).String()},
			{Label: "Status", Value: status, IsStatus: true},
			{Label: "Online", Value: online},
			{Label: "Installed", Value: InstalledDate(p.InstallDate)},
		},
		Devices: devices,
	}
}

// InstalledDate returns the date part of an install_date such as
// "2021-03-04 00:00:00", or "-" when there is none.
func InstalledDate(installDate string) string {
	date, _, _ := strings.Cut(installDate, " ")
	if date == "" {
		return "-"
	}
	return date
}
