package plotpage

// Theme represents a color theme for visualizations.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the theme-specific styling values used by the templates and charts.
type ThemeConfig struct {
	// Base colors.
	Background   string
	Surface      string
	SurfaceHover string
	Border       string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	// Accent colors.
	Accent       string
	AccentSubtle string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
	ChartPoint      string

	// ECharts theme name.
	EChartsTheme string
}

// ParseTheme maps a name to a Theme, falling back to ThemeLight.
func ParseTheme(name string) Theme {
	if Theme(name) == ThemeDark {
		return ThemeDark
	}

	return ThemeLight
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	switch theme {
	case ThemeDark:
		return darkTheme
	case ThemeLight:
		return lightTheme
	default:
		return lightTheme
	}
}

var lightTheme = ThemeConfig{
	Background:   "#fafaf9", // stone-50.
	Surface:      "#ffffff",
	SurfaceHover: "#f5f5f4", // stone-100.
	Border:       "#e7e5e4", // stone-200.

	TextPrimary:   "#1c1917", // stone-900.
	TextSecondary: "#44403c", // stone-700.
	TextMuted:     "#78716c", // stone-500.

	Accent:       "#a16207", // amber-700.
	AccentSubtle: "#fef3c7", // amber-100.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4", // stone-200.
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c", // stone-700.
	ChartTextMuted:  "#78716c", // stone-500.
	ChartPoint:      "#c2410c", // orange-700.
}

var darkTheme = ThemeConfig{
	Background:   "#0c0a09", // stone-950.
	Surface:      "#1c1917", // stone-900.
	SurfaceHover: "#292524", // stone-800.
	Border:       "#44403c", // stone-700.

	TextPrimary:   "#fafaf9", // stone-50.
	TextSecondary: "#d6d3d1", // stone-300.
	TextMuted:     "#a8a29e", // stone-400.

	Accent:       "#d97706", // amber-600.
	AccentSubtle: "#451a03", // amber-950.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c", // stone-700.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1", // stone-300.
	ChartTextMuted:  "#a8a29e", // stone-400.
	ChartPoint:      "#fb923c", // orange-400.
}
