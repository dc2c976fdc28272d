package memory

// Conversation owns one history. It is not safe for concurrent writers;
// each conversation has exactly one.
type Conversation struct {
	msgs []Message
}

// NewConversation starts a history with the given system instruction.
func NewConversation(system string) *Conversation {
	return &Conversation{msgs: []Message{System(system)}}
}

func (c *Conversation) Append(m Message) {
	c.msgs = append(c.msgs, m)
}

// Replace adopts an extended history returned by dispatch. The new history
// must keep every existing entry as its prefix.
func (c *Conversation) Replace(history []Message) error {
	if err := Validate(history); err != nil {
		return err
	}
	if len(history) < len(c.msgs) {
		return errShrunk
	}
	c.msgs = history
	return nil
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Conversation) Len() int { return len(c.msgs) }

// Last returns the trailing message.
func (c *Conversation) Last() Message {
	return c.msgs[len(c.msgs)-1]
}
