package stats

// Palette is the slice colors used by the sender chart, assigned in order and
// reused cyclically.
var Palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

// Slice is one sector of the sender pie chart.
type Slice struct {
	Point
	Color string `json:"color"`
}

// PieSlices assigns a palette color to each point of c.
func PieSlices(c Counts) []Slice {
	sectors := make([]Slice, len(c))
	for i, p := range c {
		sectors[i] = Slice{Point: p, Color: Palette[i%len(Palette)]}
	}
	return sectors
}
