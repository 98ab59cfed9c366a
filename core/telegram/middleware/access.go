package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave. A zero AdminID
// lets everyone through.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of c passes the check.
func (o AdminOptions) IsAdmin(c tele.Context) bool {
	if o.AdminID == 0 {
		return true
	}
	u := c.Sender()
	return u != nil && u.ID == o.AdminID
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.IsAdmin(c) {
				return next(c)
			}
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
