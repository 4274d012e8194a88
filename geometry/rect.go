package geometry

// Rect is an axis-aligned integer rectangle. X and Y are the top-left corner.
type Rect struct {
	X      int `json:"x"      yaml:"x"`
	Y      int `json:"y"      yaml:"y"`
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether o lies entirely within r. Shared edges count as
// contained.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X &&
		o.Y >= r.Y &&
		o.Right() <= r.Right() &&
		o.Bottom() <= r.Bottom()
}

// ContainsWithMargin reports whether o lies within r without touching any of
// its four edges.
func (r Rect) ContainsWithMargin(o Rect) bool {
	return o.X > r.X &&
		o.Y > r.Y &&
		o.Right() < r.Right() &&
		o.Bottom() < r.Bottom()
}

// Overlaps reports whether r and o share a non-empty area.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

func (r Rect) Intersect(o Rect) Rect {
	x := max(r.X, o.X)
	y := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= x || bottom <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Center returns the integer center of r, rounded towards the top-left.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Vector3i is an integer 3D extent or position. Floors are laid out on the
// X/Z plane, Y is the vertical axis.
type Vector3i struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

func NewVector3i(x, y, z int) Vector3i {
	return Vector3i{X: x, Y: y, Z: z}
}

func (v Vector3i) LesserOrEqualThan(o Vector3i) bool {
	return v.X <= o.X && v.Y <= o.Y && v.Z <= o.Z
}

// Footprint returns the X/Z rectangle of v anchored at the origin.
func (v Vector3i) Footprint() Rect {
	return Rect{Width: v.X, Height: v.Z}
}
