package isolarcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jameshartig/sungrowmon/pkg/types"
)

// GetPlantList returns the first page of plants visible to the account.
func (c *Client) GetPlantList(ctx context.Context) ([]types.Plant, error) {
	body := map[string]any{
		"page": 1,
		"size": pageSize,
	}
	var res struct {
		PageList []types.Plant `json:"pageList"`
	}
	if err := c.call(ctx, plantListPath, body, &res); err != nil {
		return nil, fmt.Errorf("queryPowerStationList failed: %w", err)
	}
	return res.PageList, nil
}

// GetDeviceList returns the first page of devices of the plant psID.
func (c *Client) GetDeviceList(ctx context.Context, psID int) ([]types.PlantDevice, error) {
	body := map[string]any{
		"ps_id": strconv.Itoa(psID),
		"page":  1,
		"size":  pageSize,
	}
	var res struct {
		PageList []types.PlantDevice `json:"pageList"`
	}
	if err := c.call(ctx, deviceListPath, body, &res); err != nil {
		return nil, fmt.Errorf("getDeviceListByPsId failed: %w", err)
	}
	return res.PageList, nil
}

// GetDevicePointData returns the real time values of pointIDs for one device.
// Every returned DevicePoint maps "p"+pointID to the value as a string.
func (c *Client) GetDevicePointData(ctx context.Context, deviceType int, psKey string, pointIDs []int) ([]types.DevicePoint, error) {
	ids := make([]string, len(pointIDs))
	for i, id := range pointIDs {
		ids[i] = strconv.Itoa(id)
	}
	body := map[string]any{
		"device_type":       deviceType,
		"ps_key_list":       []string{psKey},
		"point_id_list":     ids,
		"is_get_point_dict": "1",
	}
	var res struct {
		DevicePointList []struct {
			DevicePoint map[string]json.RawMessage `json:"device_point"`
		} `json:"device_point_list"`
	}
	if err := c.call(ctx, realTimeDataPath, body, &res); err != nil {
		return nil, fmt.Errorf("getDeviceRealTimeData failed: %w", err)
	}

	points := make([]types.DevicePoint, len(res.DevicePointList))
	for i, item := range res.DevicePointList {
		points[i] = normalizePoint(item.DevicePoint)
	}
	return points, nil
}
