package styles

// NewLocoTheme is the default: a warm red-to-yellow gradient on slate.
func NewLocoTheme() *Theme {
	return &Theme{
		Name:   "loco",
		IsDark: true,

		Primary:   ParseHex("#C0392B"), // Fire red
		Secondary: ParseHex("#F4D03F"), // Bright yellow
		Tertiary:  ParseHex("#E67E22"),
		Accent:    ParseHex("#F39C12"),

		BgBase:   ParseHex("#2C3E50"),
		BgSubtle: ParseHex("#3D566E"),

		FgBase:     ParseHex("#F5F6FA"),
		FgMuted:    ParseHex("#A0A0A0"),
		FgSubtle:   ParseHex("#6F6F70"),
		FgInverted: ParseHex("#1E1E1E"),

		Border:      ParseHex("#5D6D7E"),
		BorderFocus: ParseHex("#F39C12"),

		Success: ParseHex("#27AE60"),
		Error:   ParseHex("#E74C3C"),
		Warning: ParseHex("#F39C12"),
		Info:    ParseHex("#3498DB"),

		Blue:   ParseHex("#5EB3F6"),
		Green:  ParseHex("#3DCC91"),
		Yellow: ParseHex("#F4D03F"),
		Purple: ParseHex("#7C3AED"),
		Pink:   ParseHex("#EC4899"),
		Orange: ParseHex("#F97316"),
		Cyan:   ParseHex("#00CED1"),
	}
}

// NewDuskTheme is a cool blue-violet dark theme.
func NewDuskTheme() *Theme {
	return &Theme{
		Name:   "dusk",
		IsDark: true,

		Primary:   ParseHex("#60A5FA"),
		Secondary: ParseHex("#A78BFA"),
		Tertiary:  ParseHex("#34D399"),
		Accent:    ParseHex("#F472B6"),

		BgBase:   ParseHex("#111827"),
		BgSubtle: ParseHex("#1F2937"),

		FgBase:     ParseHex("#F9FAFB"),
		FgMuted:    ParseHex("#9CA3AF"),
		FgSubtle:   ParseHex("#6B7280"),
		FgInverted: ParseHex("#111827"),

		Border:      ParseHex("#374151"),
		BorderFocus: ParseHex("#60A5FA"),

		Success: ParseHex("#10B981"),
		Error:   ParseHex("#EF4444"),
		Warning: ParseHex("#F59E0B"),
		Info:    ParseHex("#3B82F6"),

		Blue:   ParseHex("#93C5FD"),
		Green:  ParseHex("#34D399"),
		Yellow: ParseHex("#FCD34D"),
		Purple: ParseHex("#C4B5FD"),
		Pink:   ParseHex("#F9A8D4"),
		Orange: ParseHex("#FDBA74"),
		Cyan:   ParseHex("#67E8F9"),
	}
}

// NewPaperTheme is for light terminals.
func NewPaperTheme() *Theme {
	return &Theme{
		Name:   "paper",
		IsDark: false,

		Primary:   ParseHex("#2563EB"),
		Secondary: ParseHex("#9333EA"),
		Tertiary:  ParseHex("#0D9488"),
		Accent:    ParseHex("#DB2777"),

		BgBase:   ParseHex("#FFFFFF"),
		BgSubtle: ParseHex("#F3F4F6"),

		FgBase:     ParseHex("#111827"),
		FgMuted:    ParseHex("#4B5563"),
		FgSubtle:   ParseHex("#9CA3AF"),
		FgInverted: ParseHex("#FFFFFF"),

		Border:      ParseHex("#D1D5DB"),
		BorderFocus: ParseHex("#2563EB"),

		Success: ParseHex("#059669"),
		Error:   ParseHex("#DC2626"),
		Warning: ParseHex("#D97706"),
		Info:    ParseHex("#2563EB"),

		Blue:   ParseHex("#1D4ED8"),
		Green:  ParseHex("#047857"),
		Yellow: ParseHex("#A16207"),
		Purple: ParseHex("#7E22CE"),
		Pink:   ParseHex("#BE185D"),
		Orange: ParseHex("#C2410C"),
		Cyan:   ParseHex("#0E7490"),
	}
}
