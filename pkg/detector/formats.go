package detector

import "regexp"

// TimestampFormat represents a known timestamp format for detection.
type TimestampFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for config output
	Layout     string         // Go time layout for parsing
	Examples   []string       // Example timestamps
	Ambiguous  bool           // True if format has date ordering ambiguity (MM/DD vs DD/MM)
}

// DefaultFormats returns the built-in timestamp formats in match order.
// The first format whose pattern matches a field wins, so the order of this
// list is part of the parsing behavior and must not be rearranged.
func DefaultFormats() []*TimestampFormat {
	formats := []*TimestampFormat{
		// Date only
		{
			Name:       "Date (Y-M-D)",
			PatternStr: `^\d{4}-\d{1,2}-\d{1,2}$`,
			Layout:     "2006-1-2",
			Examples:   []string{"2024-12-25", "2024-1-5"},
		},
		{
			Name:       "Date (M/D/Y)",
			PatternStr: `^\d{1,2}/\d{1,2}/\d{4}$`,
			Layout:     "1/2/2006",
			Examples:   []string{"12/25/2024"},
			Ambiguous:  true,
		},
		{
			Name:       "Date (D-M-Y)",
			PatternStr: `^\d{1,2}-\d{1,2}-\d{4}$`,
			Layout:     "2-1-2006",
			Examples:   []string{"25-12-2024"},
			Ambiguous:  true,
		},
		{
			Name:       "Date (Y/M/D)",
			PatternStr: `^\d{4}/\d{1,2}/\d{1,2}$`,
			Layout:     "2006/1/2",
			Examples:   []string{"2024/12/25"},
		},
		// Time only
		{
			Name:       "Time (H:M:S)",
			PatternStr: `^\d{1,2}:\d{2}:\d{2}$`,
			Layout:     "15:04:05",
			Examples:   []string{"14:30:00", "9:05:00"},
		},
		{
			Name:       "Time (H:M)",
			PatternStr: `^\d{1,2}:\d{2}$`,
			Layout:     "15:04",
			Examples:   []string{"14:30"},
		},
		// Date and time
		{
			Name:       "Datetime (Y-M-D H:M:S)",
			PatternStr: `^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}:\d{2}$`,
			Layout:     "2006-1-2 15:04:05",
			Examples:   []string{"2024-12-25 14:30:00", "2024-01-01 0:00:00"},
		},
		{
			Name:       "Datetime (Y-M-D H:M)",
			PatternStr: `^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}$`,
			Layout:     "2006-1-2 15:04",
			Examples:   []string{"2024-12-25 14:30"},
		},
		{
			Name:       "ISO 8601 (Y-M-DTH:M:S)",
			PatternStr: `^\d{4}-\d{1,2}-\d{1,2}T\d{1,2}:\d{2}:\d{2}$`,
			Layout:     "2006-1-2T15:04:05",
			Examples:   []string{"2024-12-25T14:30:00"},
		},
		{
			Name:       "Datetime (M/D/Y H:M:S)",
			PatternStr: `^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}$`,
			Layout:     "1/2/2006 15:04:05",
			Examples:   []string{"12/25/2024 14:30:00"},
			Ambiguous:  true,
		},
		{
			Name:       "Datetime (M/D/Y H:M)",
			PatternStr: `^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}$`,
			Layout:     "1/2/2006 15:04",
			Examples:   []string{"12/25/2024 14:30"},
			Ambiguous:  true,
		},
		{
			Name:       "Datetime (D-M-Y H:M:S)",
			PatternStr: `^\d{1,2}-\d{1,2}-\d{4} \d{1,2}:\d{2}:\d{2}$`,
			Layout:     "2-1-2006 15:04:05",
			Examples:   []string{"25-12-2024 14:30:00"},
			Ambiguous:  true,
		},
		{
			Name:       "Datetime (D-M-Y H:M)",
			PatternStr: `^\d{1,2}-\d{1,2}-\d{4} \d{1,2}:\d{2}$`,
			Layout:     "2-1-2006 15:04",
			Examples:   []string{"25-12-2024 14:30"},
			Ambiguous:  true,
		},
		{
			Name:       "Datetime (Y/M/D H:M:S)",
			PatternStr: `^\d{4}/\d{1,2}/\d{1,2} \d{1,2}:\d{2}:\d{2}$`,
			Layout:     "2006/1/2 15:04:05",
			Examples:   []string{"2024/12/25 14:30:00"},
		},
		{
			Name:       "Datetime (Y/M/D H:M)",
			PatternStr: `^\d{4}/\d{1,2}/\d{1,2} \d{1,2}:\d{2}$`,
			Layout:     "2006/1/2 15:04",
			Examples:   []string{"2024/12/25 14:30"},
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
