package notification

import (
	"context"
	"errors"
	"testing"

	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/user"
	wstypes "flota-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	rows       []notification.Notification
	nextID     int64
	failForUID int64
}

func (f *fakeRepo) Create(_ context.Context, n *notification.Notification) error {
	if f.failForUID != 0 && n.UserID == f.failForUID {
		return errors.New("insert failed")
	}
	f.nextID++
	n.ID = f.nextID
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeRepo) ListForUser(_ context.Context, userID int64, _ *notification.ListFilters) ([]notification.Notification, int64, error) {
	out := []notification.Notification{}
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) UnreadCount(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkAsRead(_ context.Context, id, userID int64) error {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) MarkAllAsRead(_ context.Context, userID int64) error {
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

type fakeAdmins struct {
	admins []user.User
	err    error
}

func (f *fakeAdmins) ListAdmins(context.Context) ([]user.User, error) {
	return f.admins, f.err
}

type fakePusher struct {
	pushed []wstypes.NotificationData
	counts map[int64]int64
}

func (f *fakePusher) BroadcastNotification(userID int64, data *wstypes.NotificationData) {
	f.pushed = append(f.pushed, *data)
}

func (f *fakePusher) BroadcastNotificationCount(userID int64, count int64) {
	if f.counts == nil {
		f.counts = map[int64]int64{}
	}
	f.counts[userID] = count
}

type fakeMailer struct {
	enabled bool
	sent    []string
	err     error
}

func (f *fakeMailer) Enabled() bool { return f.enabled }
func (f *fakeMailer) Send(to, _, _ string) error {
	f.sent = append(f.sent, to)
	return f.err
}

func TestNotifyAdminsFansOutToEveryAdmin(t *testing.T) {
	repo := &fakeRepo{}
	admins := &fakeAdmins{admins: []user.User{
		{ID: 1, Email: "a@flota.gob"},
		{ID: 2, Email: "b@flota.gob"},
	}}
	pusher := &fakePusher{}
	mailer := &fakeMailer{enabled: true}
	svc := NewService(repo, admins, pusher, mailer, zap.NewNop())

	svc.NotifyAdmins(context.Background(), notification.TypeVehicleCreated, "Nuevo vehiculo", "AB123CD")

	require.Len(t, repo.rows, 2)
	assert.Len(t, pusher.pushed, 2)
	assert.ElementsMatch(t, []string{"a@flota.gob", "b@flota.gob"}, mailer.sent)
}

func TestNotifyAdminsContinuesAfterOneFailure(t *testing.T) {
	repo := &fakeRepo{failForUID: 1}
	admins := &fakeAdmins{admins: []user.User{
		{ID: 1, Email: "a@flota.gob"},
		{ID: 2, Email: "b@flota.gob"},
	}}
	pusher := &fakePusher{}
	svc := NewService(repo, admins, pusher, &fakeMailer{}, zap.NewNop())

	svc.NotifyAdmins(context.Background(), notification.TypeTicketOpened, "Ticket", "mensaje")

	require.Len(t, repo.rows, 1)
	assert.Equal(t, int64(2), repo.rows[0].UserID)
}

func TestMarkAsReadPushesUpdatedCount(t *testing.T) {
	repo := &fakeRepo{}
	pusher := &fakePusher{}
	svc := NewService(repo, &fakeAdmins{}, pusher, &fakeMailer{}, zap.NewNop())

	n := &notification.Notification{UserID: 7, Title: "t", Message: "m", Type: notification.TypeChatMessage}
	require.NoError(t, svc.CreateAndPush(context.Background(), n))
	require.NoError(t, svc.MarkAsRead(context.Background(), n.ID, 7))

	assert.Equal(t, int64(0), pusher.counts[7])
}

func TestListClampsPaging(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeAdmins{}, &fakePusher{}, &fakeMailer{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &notification.Notification{UserID: 5}))
	}

	resp, err := svc.List(context.Background(), 5, &notification.ListFilters{Page: 0, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
}
