package haul

type Pos struct {
	R int `json:"r"`
	C int `json:"c"`
}

var Origin = Pos{}

func (a Pos) Sub(b Pos) Pos { return Pos{a.R - b.R, a.C - b.C} }
func (a Pos) Dist(b Pos) int {
	d := a.Sub(b)
	return abs(d.R) + abs(d.C)
}
func (a Pos) In(n int) bool { return a.R >= 0 && a.R < n && a.C >= 0 && a.C < n }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
