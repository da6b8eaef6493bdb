package organization

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
)

var (
	ErrNotFound       = errors.New("organization not found")
	ErrMemberNotFound = errors.New("membership not found")
	ErrHasTasks       = errors.New("organization still owns tasks")
)

type Organization struct {
	ID        int64
	Name      string
	Address   string
	Members   []Member
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is one role a user holds in an organization. A user holding
// several roles appears once per role.
type Member struct {
	UserID    int64
	Role      access.Role
	CreatedAt time.Time
}

// Membership is Member seen from the user's side.
type Membership struct {
	OrganizationID int64
	Role           access.Role
}

func (o *Organization) LogValue() slog.Value {
	if o == nil {
		return slog.AnyValue(nil)
	}

	return slog.GroupValue(
		slog.Int64("id", o.ID),
		slog.Int("members", len(o.Members)),
	)
}
