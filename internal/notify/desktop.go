package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = "/org/freedesktop/Notifications"
	notifyMethod         = "org.freedesktop.Notifications.Notify"
)

// ObjectGetter is satisfied by *dbus.Conn.
type ObjectGetter interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Desktop posts completion alerts through org.freedesktop.Notifications.
type Desktop struct {
	conn    ObjectGetter
	appName string
	icon    string
}

// NewDesktop sends notifications over conn, normally the session bus.
func NewDesktop(conn ObjectGetter, appName string) *Desktop {
	return &Desktop{conn: conn, appName: appName, icon: "alarm-symbolic"}
}

func (d *Desktop) Notify(ctx context.Context, c session.Completion) error {
	obj := d.conn.Object(notificationsService, dbus.ObjectPath(notificationsPath))
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		d.appName,  // app_name
		uint32(0),  // replaces_id
		d.icon,     // app_icon
		Title(c),   // summary
		Body(c),    // body
		[]string{}, // actions
		map[string]dbus.Variant{ // hints
			"urgency": dbus.MakeVariant(byte(2)), // critical: stays until dismissed
		},
		int32(0), // expire_timeout: never
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
