package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/repositories"
)

// In-memory fakes mirroring the repository semantics, shared by the
// service tests in this package.

type edge struct{ from, to uint }

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) addUser(name, email string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &models.User{ID: f.nextID, Name: name, Email: email}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetManyByIDs(ids []uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) ExistsByID(id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeSocialRepo struct {
	mu      sync.Mutex
	users   *fakeUserRepo
	follows map[edge]bool
	blocks  map[edge]bool
}

func newFakeSocialRepo(users *fakeUserRepo) *fakeSocialRepo {
	return &fakeSocialRepo{
		users:   users,
		follows: make(map[edge]bool),
		blocks:  make(map[edge]bool),
	}
}

func (f *fakeSocialRepo) CreateFollow(followerID, followeeID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{followerID, followeeID}
	if f.follows[e] {
		return repositories.ErrDuplicateKey
	}
	f.follows[e] = true
	return nil
}

func (f *fakeSocialRepo) DeleteFollow(followerID, followeeID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.follows, edge{followerID, followeeID})
	return nil
}

func (f *fakeSocialRepo) IsFollowing(followerID, followeeID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.follows[edge{followerID, followeeID}], nil
}

func (f *fakeSocialRepo) CreateBlock(blockerID, blockedID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{blockerID, blockedID}
	if f.blocks[e] {
		return repositories.ErrDuplicateKey
	}
	f.blocks[e] = true
	// 与仓储层一致：同一事务内移除双向关注
	delete(f.follows, edge{blockerID, blockedID})
	delete(f.follows, edge{blockedID, blockerID})
	return nil
}

func (f *fakeSocialRepo) DeleteBlock(blockerID, blockedID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blocks, edge{blockerID, blockedID})
	return nil
}

func (f *fakeSocialRepo) IsBlocked(blockerID, blockedID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks[edge{blockerID, blockedID}], nil
}

func (f *fakeSocialRepo) listEdges(m map[edge]bool, pick func(edge) (uint, bool)) []models.User {
	var ids []uint
	for e := range m {
		if id, ok := pick(e); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out
}

func (f *fakeSocialRepo) ListFollowing(userID uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listEdges(f.follows, func(e edge) (uint, bool) { return e.to, e.from == userID }), nil
}

func (f *fakeSocialRepo) ListFollowers(userID uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listEdges(f.follows, func(e edge) (uint, bool) { return e.from, e.to == userID }), nil
}

func (f *fakeSocialRepo) ListBlocked(userID uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listEdges(f.blocks, func(e edge) (uint, bool) { return e.to, e.from == userID }), nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []edge // recipient <- sender
}

func (f *fakeNotifier) NotifyFollow(recipientID, senderID uint, senderName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, edge{senderID, recipientID})
}

type published struct {
	userID  uint
	event   string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) PublishToUser(userID uint, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID, event, payload})
}

func (f *fakePublisher) eventsFor(userID uint) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, e := range f.events {
		if e.userID == userID {
			out = append(out, e)
		}
	}
	return out
}

type fakeSessionRepo struct {
	mu        sync.Mutex
	nextID    uint
	sessions  map[uint]*models.Session
	attendees map[edge]bool // session -> user
	invites   map[edge]bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  make(map[uint]*models.Session),
		attendees: make(map[edge]bool),
		invites:   make(map[edge]bool),
	}
}

func (f *fakeSessionRepo) Create(session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = f.nextID
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) GetByID(id uint) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) ExistsByID(id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok, nil
}

func (f *fakeSessionRepo) Update(session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	for e := range f.attendees {
		if e.from == id {
			delete(f.attendees, e)
		}
	}
	for e := range f.invites {
		if e.from == id {
			delete(f.invites, e)
		}
	}
	return nil
}

func (f *fakeSessionRepo) TransitionStatus(id uint, from []string, to string, setEndTime bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return false, nil
	}
	for _, st := range from {
		if s.Status == st {
			s.Status = to
			if setEndTime {
				now := time.Now()
				s.EndTime = &now
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) SetVisibility(id uint, isPublic bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.IsPublic = isPublic
	return nil
}

func (f *fakeSessionRepo) AddAttendee(sessionID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{sessionID, userID}
	if f.attendees[e] {
		return repositories.ErrDuplicateKey
	}
	f.attendees[e] = true
	return nil
}

func (f *fakeSessionRepo) RemoveAttendee(sessionID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{sessionID, userID}
	if !f.attendees[e] {
		return false, nil
	}
	delete(f.attendees, e)
	return true, nil
}

func (f *fakeSessionRepo) IsAttendee(sessionID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attendees[edge{sessionID, userID}], nil
}

func (f *fakeSessionRepo) ListAttendees(sessionID uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for e := range f.attendees {
		if e.from == sessionID {
			out = append(out, models.User{ID: e.to})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSessionRepo) AddInvite(sessionID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{sessionID, userID}
	if f.invites[e] {
		return repositories.ErrDuplicateKey
	}
	f.invites[e] = true
	return nil
}

func (f *fakeSessionRepo) IsInvited(sessionID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invites[edge{sessionID, userID}], nil
}

func (f *fakeSessionRepo) listByFilter(keep func(*models.Session) bool) []models.Session {
	var out []models.Session
	for _, s := range f.sessions {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeSessionRepo) ListPublic() ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listByFilter(func(s *models.Session) bool { return s.IsPublic }), nil
}

func (f *fakeSessionRepo) ListByStatus(status string) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listByFilter(func(s *models.Session) bool { return s.IsPublic && s.Status == status }), nil
}

func (f *fakeSessionRepo) ListUpcoming(now time.Time) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listByFilter(func(s *models.Session) bool {
		return s.IsPublic && s.Status == models.SessionScheduled && s.StartTime.After(now)
	}), nil
}

func (f *fakeSessionRepo) ListPast() ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listByFilter(func(s *models.Session) bool { return s.IsPublic && s.Status == models.SessionFinished }), nil
}

func (f *fakeSessionRepo) ListJoinedSessionIDs(userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint
	for e := range f.attendees {
		if e.to == userID {
			ids = append(ids, e.from)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeMessageStore struct {
	mu      sync.Mutex
	direct  []models.DirectMessage
	session []models.SessionMessage
}

func (f *fakeMessageStore) CreateDirect(msg *models.DirectMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	f.direct = append(f.direct, *msg)
	return nil
}

func (f *fakeMessageStore) GetDirectBetween(userID, otherID uint) ([]models.DirectMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DirectMessage
	for _, m := range f.direct {
		if (m.SenderID == userID && m.RecipientID == otherID) ||
			(m.SenderID == otherID && m.RecipientID == userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMessageStore) MarkDirectRead(recipientID, senderID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for i := range f.direct {
		m := &f.direct[i]
		if m.SenderID == senderID && m.RecipientID == recipientID && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeMessageStore) Conversations(userID uint) ([]repositories.ConversationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[uint]models.DirectMessage)
	for _, m := range f.direct {
		var counterpart uint
		switch userID {
		case m.SenderID:
			counterpart = m.RecipientID
		case m.RecipientID:
			counterpart = m.SenderID
		default:
			continue
		}
		if prev, ok := latest[counterpart]; !ok || m.ID > prev.ID {
			latest[counterpart] = m
		}
	}
	var rows []repositories.ConversationRow
	for cp, m := range latest {
		rows = append(rows, repositories.ConversationRow{DirectMessage: m, CounterpartID: cp})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return rows, nil
}

func (f *fakeMessageStore) CreateSessionMessage(msg *models.SessionMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	f.session = append(f.session, *msg)
	return nil
}

func (f *fakeMessageStore) GetSessionMessages(sessionID uint) ([]models.SessionMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SessionMessage
	for _, m := range f.session {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	nextID        uint
	notifications []models.Notification
}

func (f *fakeNotificationStore) Create(notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationStore) ListByRecipient(recipientID uint, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].RecipientID == recipientID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(recipientID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].RecipientID == recipientID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

type fakeReportStore struct {
	mu      sync.Mutex
	nextID  uint
	reports []models.Report
}

func (f *fakeReportStore) Create(report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	report.ID = f.nextID
	report.CreatedAt = time.Now()
	f.reports = append(f.reports, *report)
	return nil
}

func (f *fakeReportStore) ListForUser(reportedUserID uint) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for i := len(f.reports) - 1; i >= 0; i-- {
		if f.reports[i].ReportedUserID == reportedUserID {
			out = append(out, f.reports[i])
		}
	}
	return out, nil
}

// allowAllLimiter 永远放行
type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}
func (allowAllLimiter) Remaining(context.Context, string, int, time.Duration) (int, error) {
	return 1, nil
}
func (allowAllLimiter) Reset(context.Context, string, time.Duration) error { return nil }

// denyAllLimiter 永远拒绝
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}
func (denyAllLimiter) Remaining(context.Context, string, int, time.Duration) (int, error) {
	return 0, nil
}
func (denyAllLimiter) Reset(context.Context, string, time.Duration) error { return nil }
