package grid

// DenseView is the boundary format handed to renderers: a row-major array
// covering the store's bounding box, Unknown-initialised, with classified
// values written for every observed cell. Index = (cy−MinY)·Width + (cx−MinX).
type DenseView struct {
	Box    Box
	Width  int
	Height int
	States []State
}

// At returns the state at a cell, or Unknown for cells outside the box.
func (d DenseView) At(c Cell) State {
	if c.X < d.Box.MinX || c.X > d.Box.MaxX || c.Y < d.Box.MinY || c.Y > d.Box.MaxY {
		return Unknown
	}
	return d.States[int(c.Y-d.Box.MinY)*d.Width+int(c.X-d.Box.MinX)]
}

// Export produces the dense classified view of the store. An empty store
// yields a 1×1 Unknown view at the zero box.
func (s *Store) Export(th Thresholds) DenseView {
	box := s.BoundingBox()
	d := DenseView{
		Box:    box,
		Width:  box.Width(),
		Height: box.Height(),
	}
	d.States = make([]State, d.Width*d.Height) // zero value is Unknown
	for k, lo := range s.cells {
		c := k.cell()
		d.States[int(c.Y-box.MinY)*d.Width+int(c.X-box.MinX)] = Classify(lo, th)
	}
	return d
}
