package domain

// RepeatMode represents the repeat mode for queue playback.
type RepeatMode int

const (
	RepeatOff   RepeatMode = iota // Default: no repeating
	RepeatTrack                   // Repeat current track indefinitely
	RepeatQueue                   // Repeat entire queue when reaching end
)

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatTrack:
		return "track"
	case RepeatQueue:
		return "queue"
	default:
		return "off"
	}
}

// Next returns the mode that follows in the off -> track -> queue -> off cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatTrack
	case RepeatTrack:
		return RepeatQueue
	default:
		return RepeatOff
	}
}

// ParseRepeatMode converts a string to domain.RepeatMode.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "track":
		return RepeatTrack
	case "queue":
		return RepeatQueue
	default:
		return RepeatOff
	}
}
