package toast

// DefaultExpiry is the expiry, in milliseconds, of a toast built without an
// explicit WithExpiry call.
const DefaultExpiry uint32 = 2500

// Builder describes a toast before it is shown.
// The zero value is not useful; start from NewBuilder.
type Builder struct {
	message     string
	level       Level
	dismissable bool
	expiry      *uint32
	progress    bool
	position    Position
}

// NewBuilder returns a builder for a toast with the given message and the
// default options: info level, dismissable, 2500ms expiry with a progress
// bar, shown bottom left.
func NewBuilder(message string) Builder {
	expiry := DefaultExpiry
	return Builder{
		message:     message,
		level:       LevelInfo,
		dismissable: true,
		expiry:      &expiry,
		progress:    true,
		position:    PositionBottomLeft,
	}
}

// WithLevel sets the toast level.
func (b Builder) WithLevel(level Level) Builder {
	b.level = level
	return b
}

// WithDismissable sets whether the user may dismiss the toast.
func (b Builder) WithDismissable(dismissable bool) Builder {
	b.dismissable = dismissable
	return b
}

// WithExpiry sets the expiry in milliseconds. A nil expiry means the toast
// stays until it is dismissed or cleared.
func (b Builder) WithExpiry(expiry *uint32) Builder {
	if expiry == nil {
		b.expiry = nil
		return b
	}
	v := *expiry
	b.expiry = &v
	return b
}

// WithProgress sets whether a progress bar counts down the expiry.
func (b Builder) WithProgress(progress bool) Builder {
	b.progress = progress
	return b
}

// WithPosition sets the screen corner.
func (b Builder) WithPosition(position Position) Builder {
	b.position = position
	return b
}

// Message returns the configured message.
func (b Builder) Message() string { return b.message }

// Level returns the configured level.
func (b Builder) Level() Level { return b.level }

// Dismissable returns the configured dismissable flag.
func (b Builder) Dismissable() bool { return b.dismissable }

// Expiry returns the configured expiry, or nil when absent.
func (b Builder) Expiry() *uint32 {
	if b.expiry == nil {
		return nil
	}
	v := *b.expiry
	return &v
}

// Progress returns the configured progress flag.
func (b Builder) Progress() bool { return b.progress }

// Position returns the configured position.
func (b Builder) Position() Position { return b.position }
