package viz

import "github.com/charmbracelet/lipgloss"

// Palette maps normalized temperatures to colours through evenly spaced
// stops.
type Palette struct {
	Name  string
	Stops []lipgloss.Color
}

var (
	PaletteThermal = Palette{
		Name:  "thermal",
		Stops: []lipgloss.Color{"#0000ff", "#ffffff", "#ff0000"},
	}

	PaletteInferno = Palette{
		Name:  "inferno",
		Stops: []lipgloss.Color{"#000004", "#781c6d", "#ed6925", "#fcffa4"},
	}

	PaletteOcean = Palette{
		Name:  "ocean",
		Stops: []lipgloss.Color{"#001133", "#0066aa", "#00ffcc"},
	}

	PaletteMono = Palette{
		Name:  "mono",
		Stops: []lipgloss.Color{"#000000", "#ffffff"},
	}
)

var Palettes = []Palette{PaletteThermal, PaletteInferno, PaletteOcean, PaletteMono}

// At returns the colour for s in [0, 1]; values outside are clamped.
func (p Palette) At(s float64) lipgloss.Color {
	if len(p.Stops) == 0 {
		return lipgloss.Color("#ffffff")
	}
	if len(p.Stops) == 1 {
		return p.Stops[0]
	}
	s = max(0, min(1, s))
	pos := s * float64(len(p.Stops)-1)
	i := min(int(pos), len(p.Stops)-2)
	r1, g1, b1 := parseHex(string(p.Stops[i]))
	r2, g2, b2 := parseHex(string(p.Stops[i+1]))
	return lipgloss.Color(mixHex(r1, g1, b1, r2, g2, b2, pos-float64(i)))
}

func GetPalette(name string) Palette {
	for _, p := range Palettes {
		if p.Name == name {
			return p
		}
	}
	return PaletteThermal
}

// NextPalette cycles through Palettes.
func NextPalette(current Palette) Palette {
	for i, p := range Palettes {
		if p.Name == current.Name {
			return Palettes[(i+1)%len(Palettes)]
		}
	}
	return Palettes[0]
}
