package pageobjects

import "context"

// Locator keys read from a notifications section.
const (
	notificationItem    = "item"
	notificationMessage = "message"
	notificationClose   = "close"
)

// Notification is a toast shown by the IDE.
type Notification struct {
	Base
}

var (
	_ Clickable   = (*Notification)(nil)
	_ Extractable = (*Notification)(nil)
)

// Message returns the notification text.
func (n *Notification) Message(ctx context.Context) (string, error) {
	return n.text(ctx, notificationMessage)
}

// Dismiss clicks the close button.
func (n *Notification) Dismiss(ctx context.Context) error {
	button, err := n.findOne(ctx, notificationClose)
	if err != nil {
		return err
	}
	return button.Click(ctx)
}
