package category

// Colour tokens and icon names assigned to category ids.
const (
	FallbackColor = "bg-gray-400"
	FallbackHex   = "oklch(70.7% 0.022 261.325)"
)

// Palette maps category ids to colour tokens and icons, and colour tokens to
// CSS colour values.
type Palette struct {
	Colors map[int]string
	Icons  map[int]string
	Hex    map[string]string
}

// DefaultPalette returns the colour and icon tables used by the dashboard.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[int]string{
			1: "bg-indigo-300",
			2: "bg-rose-500",
			3: "bg-pink-500",
			4: "bg-amber-400",
			5: "bg-slate-400",
			6: "bg-blue-400",
		},
		Icons: map[int]string{
			1: "ArchiveBox",
			2: "CurrencyDollar",
			3: "WrenchScrewdriver",
			4: "HomeModern",
			5: "QuestionMarkCircle",
		},
		Hex: map[string]string{
			"bg-indigo-300": "oklch(78.5% 0.115 274.713)",
			"bg-rose-500":   "oklch(64.5% 0.246 16.439)",
			"bg-pink-500":   "oklch(65.6% 0.241 354.308)",
			"bg-amber-400":  "oklch(82.8% 0.189 84.429)",
			"bg-slate-400":  "oklch(70.4% 0.04 256.788)",
			"bg-blue-400":   "oklch(70.7% 0.165 254.624)",
		},
	}
}
