package playback

// Transport is the narrow contract the engine holds on the media player: read
// the position, issue play/pause/seek. The engine never touches a concrete
// player beyond this.
type Transport interface {
	Position() float64
	Play() error
	Pause() error
	Seek(position float64) error
}

// Command is one playback instruction recorded for a remote player
type Command struct {
	Action   string  `json:"action"` // "play", "pause" or "seek"
	Position float64 `json:"position,omitempty"`
}

// CommandRecorder implements Transport by queueing commands for a client-side
// player to execute, keeping the engine free of any concrete media dependency.
// Not safe for concurrent use; callers hold their own lock.
type CommandRecorder struct {
	position float64
	commands []Command
}

// SetPosition records the most recent position reported by the client
func (c *CommandRecorder) SetPosition(position float64) {
	c.position = position
}

func (c *CommandRecorder) Position() float64 {
	return c.position
}

func (c *CommandRecorder) Play() error {
	c.commands = append(c.commands, Command{Action: "play"})
	return nil
}

func (c *CommandRecorder) Pause() error {
	c.commands = append(c.commands, Command{Action: "pause"})
	return nil
}

func (c *CommandRecorder) Seek(position float64) error {
	c.position = position
	c.commands = append(c.commands, Command{Action: "seek", Position: position})
	return nil
}

// Drain returns the queued commands and clears the queue
func (c *CommandRecorder) Drain() []Command {
	commands := c.commands
	c.commands = nil
	return commands
}
