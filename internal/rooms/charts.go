package rooms

// Chart identifiers used in URLs and file names
const (
	ChartClimate = "climate"
	ChartHandler = "handler"
)

// Trace is a single plotted column
type Trace struct {
	Column string
	Label  string
	Color  string // hex, e.g. "#3366cc"
	Dashed bool
	Filled bool
}

// Axis describes a y-axis. A zero Min and Max leaves the range automatic.
type Axis struct {
	Name string
	Min  float64
	Max  float64
}

// ChartLayout is the static description of one room chart
type ChartLayout struct {
	ID        string
	Legend    string
	Primary   Axis
	Secondary Axis
	Left      []Trace
	Right     []Trace
}

// Charts returns the chart layouts for the room
func (r Room) Charts() []ChartLayout {
	switch r {
	case CBC1to8:
		return []ChartLayout{
			{
				ID:        ChartClimate,
				Legend:    "Variables room CBC",
				Primary:   Axis{Name: "Temperature [°F]", Min: 50, Max: 100},
				Secondary: Axis{Name: "Relative Humidity [%]"},
				Left: []Trace{
					{Column: "Z1_T", Label: "Temp sensor 1", Color: "#3366cc"},
					{Column: "Z2_T", Label: "Temp sensor 2", Color: "#B40018"},
				},
				Right: []Trace{
					{Column: "Z1_HR", Label: "HR sensor 1", Color: "#3366cc", Dashed: true},
					{Column: "Z2_HR", Label: "HR sensor 2", Color: "#B40018", Dashed: true},
				},
			},
			handlerLayout("1", "Variables room CBC 1-8"),
		}
	case CBC10to12:
		return []ChartLayout{
			{
				ID:        ChartClimate,
				Legend:    "Variables room CBC",
				Primary:   Axis{Name: "Temperature [°F]", Min: 50, Max: 100},
				Secondary: Axis{Name: "Relative Humidity [%]"},
				Left: []Trace{
					{Column: "Z3_T", Label: "Temp sensor 3", Color: "#3366cc"},
				},
				Right: []Trace{
					{Column: "Z3_HR", Label: "HR sensor 3", Color: "#3366cc", Dashed: true},
				},
			},
			handlerLayout("2", "Variables room CBC 10-12"),
		}
	default:
		return nil
	}
}

// Chart returns the layout with the given id
func (r Room) Chart(id string) (ChartLayout, bool) {
	for _, c := range r.Charts() {
		if c.ID == id {
			return c, true
		}
	}
	return ChartLayout{}, false
}

// handlerLayout builds the air handler chart. Both handlers share outside humidity.
func handlerLayout(n, legend string) ChartLayout {
	ha := "HA" + n
	return ChartLayout{
		ID:        ChartHandler,
		Legend:    legend,
		Primary:   Axis{Name: "Handler " + n + ": Air Temperature [°F]"},
		Secondary: Axis{Name: "Outside HR and Dampers [%]", Min: 0, Max: 100},
		Left: []Trace{
			{Column: ha + "_T_Iny", Label: "Iny Air BMC", Color: "#ff9900"},
			{Column: ha + "_T_Rec", Label: "Rec Temp", Color: "#0B961F"},
			{Column: ha + "_T_AHA", Label: "Air Inject to handler", Color: "#808080"},
			{Column: ha + "_T_OUT", Label: "Out Air Temp", Color: "#000000"},
			{Column: ha + "_T_Fac", Label: "Plant Air Temp", Color: "#152DA3"},
		},
		Right: []Trace{
			{Column: ha + "_Dmp_Vout", Label: "Out Damp", Color: "#ff7f00", Filled: true},
			{Column: ha + "_Dmp_Vrec", Label: "Rec Damp", Color: "#4daf4a", Filled: true},
			{Column: ha + "_Dmp_Vfac", Label: "Fac Damp", Color: "#377eb8", Filled: true},
			{Column: "HA1_2_OUT_HR", Label: "Outside HR", Color: "#ff0000", Dashed: true},
		},
	}
}
