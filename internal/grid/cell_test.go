package grid

import "testing"

func TestCellAt(t *testing.T) {
	ix := Indexer{Resolution: 0.05}

	tests := []struct {
		name string
		x, y float64
		want Cell
	}{
		{"origin", 0, 0, Cell{0, 0}},
		{"inside first cell", 0.049, 0.01, Cell{0, 0}},
		{"on cell edge goes up", 0.05, 0, Cell{1, 0}},
		{"second cell", 0.07, 0.12, Cell{1, 2}},
		{"negative floors down", -0.01, -0.01, Cell{-1, -1}},
		{"negative edge", -0.05, 0, Cell{-1, 0}},
		{"below negative edge", -0.051, 0, Cell{-2, 0}},
		{"far point", 1.02, -1.02, Cell{20, -21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.CellAt(tt.x, tt.y); got != tt.want {
				t.Errorf("CellAt(%g, %g) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCellAtWithOrigin(t *testing.T) {
	ix := Indexer{Resolution: 0.1, OriginX: -1.0, OriginY: 2.0}

	if got := ix.CellAt(-1.0, 2.0); got != (Cell{0, 0}) {
		t.Errorf("origin point = %+v, want (0,0)", got)
	}
	if got := ix.CellAt(-0.95, 2.35); got != (Cell{0, 3}) {
		t.Errorf("offset point = %+v, want (0,3)", got)
	}
	if got := ix.CellAt(-1.05, 1.95); got != (Cell{-1, -1}) {
		t.Errorf("below-origin point = %+v, want (-1,-1)", got)
	}
}

func TestWorldAtInvertsCellAt(t *testing.T) {
	ix := Indexer{Resolution: 0.05, OriginX: 0.5, OriginY: -0.5}

	for _, c := range []Cell{{0, 0}, {3, -7}, {-12, 4}, {100, 100}} {
		x, y := ix.WorldAt(c)
		if got := ix.CellAt(x, y); got != c {
			t.Errorf("CellAt(WorldAt(%+v)) = %+v", c, got)
		}
	}
}

func TestPackedKeyRoundTrip(t *testing.T) {
	cells := []Cell{
		{0, 0},
		{1, -1},
		{-1, 1},
		{2147483647, -2147483648},
		{-2147483648, 2147483647},
		{42, 42},
	}

	seen := make(map[packedKey]Cell, len(cells))
	for _, c := range cells {
		k := c.key()
		if got := k.cell(); got != c {
			t.Errorf("key round trip: %+v -> %+v", c, got)
		}
		if prev, dup := seen[k]; dup {
			t.Errorf("key collision between %+v and %+v", prev, c)
		}
		seen[k] = c
	}
}
