package widget

// Log is the append-only message history of one session. It is not
// synchronized; Session guards it.
type Log struct {
	items []Message
}

func NewLog() *Log {
	return &Log{items: make([]Message, 0, 16)}
}

func (l *Log) Append(msg Message) {
	l.items = append(l.items, msg)
}

// LatestBySender returns the most recent message from sender.
func (l *Log) LatestBySender(sender Sender) (Message, bool) {
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i].Sender == sender {
			return l.items[i], true
		}
	}
	return Message{}, false
}

// Messages returns a copy in arrival order.
func (l *Log) Messages() []Message {
	copied := make([]Message, len(l.items))
	copy(copied, l.items)
	return copied
}

func (l *Log) Len() int {
	return len(l.items)
}
