package restserver

import (
	"github.com/chrissnell/climatewatch/internal/dashboard"
	"github.com/chrissnell/climatewatch/internal/rooms"
)

// transformResult converts a dashboard result into the JSON/MessagePack body
func transformResult(res *dashboard.Result, room rooms.Room) *DataResponse {
	resp := &DataResponse{
		Title:      res.Title,
		Room:       room.String(),
		Health:     res.Health,
		HealthList: res.HealthList,
		Columns:    res.Frame.Columns,
		// Pre-allocate with exact capacity to avoid multiple reallocations
		Rows: make([][]any, 0, res.Frame.Len()),
	}
	if resp.HealthList == nil {
		resp.HealthList = []float64{}
	}

	for _, row := range res.Frame.Rows {
		values := make([]any, len(row))
		for i, cell := range row {
			values[i] = cell.Value()
		}
		resp.Rows = append(resp.Rows, values)
	}
	return resp
}

// transformRooms lists every supported room with its layout
func transformRooms(svc *dashboard.Service) []RoomResponse {
	all := rooms.All()
	out := make([]RoomResponse, 0, len(all))
	for _, r := range all {
		charts := make([]string, 0, 2)
		for _, c := range r.Charts() {
			charts = append(charts, c.ID)
		}
		out = append(out, RoomResponse{
			Name:     r.String(),
			Table:    svc.Table(r),
			Channels: r.Channels(),
			Export:   r.ExportColumns(),
			Charts:   charts,
		})
	}
	return out
}
