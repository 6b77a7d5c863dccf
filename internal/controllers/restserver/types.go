package restserver

// DataResponse is the body of /api/data requests
type DataResponse struct {
	Title      string    `json:"title"`
	Room       string    `json:"room"`
	Health     float64   `json:"health"`
	HealthList []float64 `json:"health_list"`
	Columns    []string  `json:"columns"`
	Rows       [][]any   `json:"rows"`
}

// RoomResponse describes one supported room
type RoomResponse struct {
	Name     string   `json:"name"`
	Table    string   `json:"table"`
	Channels []string `json:"channels"`
	Export   []string `json:"export_columns"`
	Charts   []string `json:"charts"`
}

// StatusResponse is the body of /api/status
type StatusResponse struct {
	Upstream string `json:"upstream"`
	Error    string `json:"error,omitempty"`
	Today    string `json:"today"`
}

// RefreshResponse is the body of /api/refresh
type RefreshResponse struct {
	Status string `json:"status"`
}
