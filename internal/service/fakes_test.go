package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"github.com/sefazor/fanvault-backend/pkg/lock"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type fakeCreatorStore struct {
	creators map[uint]*models.Creator
	agencies map[uint]*models.Agency
	chatters map[uint]*models.Chatter
}

func newFakeCreatorStore() *fakeCreatorStore {
	return &fakeCreatorStore{
		creators: map[uint]*models.Creator{},
		agencies: map[uint]*models.Agency{},
		chatters: map[uint]*models.Chatter{},
	}
}

func (f *fakeCreatorStore) Create(ctx context.Context, c *models.Creator) error {
	c.ID = uint(len(f.creators) + 1)
	f.creators[c.ID] = c
	return nil
}

func (f *fakeCreatorStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeCreatorStore) GetByID(ctx context.Context, id uint) (*models.Creator, error) {
	if c, ok := f.creators[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) GetBySlug(ctx context.Context, slug string) (*models.Creator, error) {
	for _, c := range f.creators {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) GetByUserID(ctx context.Context, userID uint) (*models.Creator, error) {
	for _, c := range f.creators {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) GetAgency(ctx context.Context, id uint) (*models.Agency, error) {
	if a, ok := f.agencies[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) GetAgencyByOwner(ctx context.Context, ownerID uint) (*models.Agency, error) {
	for _, a := range f.agencies {
		if a.OwnerID == ownerID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) AgencyCreators(ctx context.Context, agencyID uint) ([]models.Creator, error) {
	var out []models.Creator
	for _, c := range f.creators {
		if c.AgencyID != nil && *c.AgencyID == agencyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCreatorStore) GetChatter(ctx context.Context, id uint) (*models.Chatter, error) {
	if c, ok := f.chatters[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) GetChatterByUserID(ctx context.Context, userID uint) (*models.Chatter, error) {
	for _, c := range f.chatters {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCreatorStore) CreatorEarnings(ctx context.Context, creatorID uint, limit, offset int) ([]models.CreatorEarning, error) {
	return nil, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*models.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = uint(len(f.users) + 1)
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id uint, fullName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FullName = fullName
	return nil
}

func (f *fakeUserStore) SetRole(ctx context.Context, id uint, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	return &models.UserStats{}, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeTokenStore struct {
	verifications map[string]*models.VerificationToken
	resets        map[string]*models.PasswordResetToken
	verified      map[uint]bool
	passwords     map[uint]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		verifications: map[string]*models.VerificationToken{},
		resets:        map[string]*models.PasswordResetToken{},
		verified:      map[uint]bool{},
		passwords:     map[uint]string{},
	}
}

func (f *fakeTokenStore) CreateVerification(ctx context.Context, t *models.VerificationToken) error {
	t.ID = uint(len(f.verifications) + 1)
	f.verifications[t.Token] = t
	return nil
}

func (f *fakeTokenStore) FindVerification(ctx context.Context, token string) (*models.VerificationToken, error) {
	if t, ok := f.verifications[token]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenStore) DeleteVerification(ctx context.Context, id uint) error {
	for k, t := range f.verifications {
		if t.ID == id {
			delete(f.verifications, k)
		}
	}
	return nil
}

func (f *fakeTokenStore) ConsumeVerification(ctx context.Context, userID uint) error {
	f.verified[userID] = true
	for k, t := range f.verifications {
		if t.UserID == userID {
			delete(f.verifications, k)
		}
	}
	return nil
}

func (f *fakeTokenStore) CreateReset(ctx context.Context, t *models.PasswordResetToken) error {
	t.ID = uint(len(f.resets) + 1)
	f.resets[t.Token] = t
	return nil
}

func (f *fakeTokenStore) FindReset(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	if t, ok := f.resets[token]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenStore) DeleteReset(ctx context.Context, id uint) error {
	for k, t := range f.resets {
		if t.ID == id {
			delete(f.resets, k)
		}
	}
	return nil
}

func (f *fakeTokenStore) ResetPassword(ctx context.Context, userID uint, hash string) error {
	f.passwords[userID] = hash
	for k, t := range f.resets {
		if t.UserID == userID {
			delete(f.resets, k)
		}
	}
	return nil
}

type sentMail struct {
	kind, to, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) record(kind, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to, token: token})
	return nil
}

func (f *fakeMailer) SendVerification(ctx context.Context, to, name, token string) error {
	return f.record("verification", to, token)
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return f.record("reset", to, token)
}

func (f *fakeMailer) SendWelcome(ctx context.Context, to, name string) error {
	return f.record("welcome", to, "")
}

func (f *fakeMailer) SendPayoutPaid(ctx context.Context, to, name, amount string) error {
	return f.record("payout", to, amount)
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateToken(userID uint, email, role string) (string, error) {
	return "jwt-" + email, nil
}

type fakeLocker struct {
	held map[string]bool
}

func (f *fakeLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return nil, lock.ErrNotObtained
	}
	f.held[key] = true
	return func(context.Context) error {
		delete(f.held, key)
		return nil
	}, nil
}

// mockCreditStore is a testify mock for the sweep tests.
type mockCreditStore struct {
	mock.Mock
}

func (m *mockCreditStore) Balances(ctx context.Context, userID uint) (models.CreditBalances, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.CreditBalances), args.Error(1)
}

func (m *mockCreditStore) History(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.CreditTransaction), args.Error(1)
}

func (m *mockCreditStore) Grant(ctx context.Context, userID uint, g repository.GrantParams) (*models.CreditTransaction, error) {
	args := m.Called(ctx, userID, g)
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *mockCreditStore) Spend(ctx context.Context, userID uint, amount int64, reference string, now time.Time) (models.SpendResult, error) {
	args := m.Called(ctx, userID, amount, reference, now)
	return args.Get(0).(models.SpendResult), args.Error(1)
}

func (m *mockCreditStore) UsersWithExpiredCredits(ctx context.Context, now time.Time, afterID uint, limit int) ([]uint, error) {
	args := m.Called(ctx, now, afterID, limit)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockCreditStore) ExpireUser(ctx context.Context, userID uint, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCreditStore) DueRecurringGrants(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *mockCreditStore) GrantRecurring(ctx context.Context, subscriptionID uint, g repository.GrantParams, interval time.Duration, now time.Time) (bool, error) {
	args := m.Called(ctx, subscriptionID, g, interval, now)
	return args.Bool(0), args.Error(1)
}

type mockMessageStore struct {
	mock.Mock
}

func (m *mockMessageStore) Create(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageStore) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessageStore) Thread(ctx context.Context, creatorID, fanID uint, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, creatorID, fanID, limit, offset)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockMessageStore) CreateBump(ctx context.Context, bump *models.BumpMessage) error {
	return m.Called(ctx, bump).Error(0)
}

func (m *mockMessageStore) DueBumps(ctx context.Context, now time.Time, limit int) ([]models.BumpMessage, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]models.BumpMessage), args.Error(1)
}

func (m *mockMessageStore) HasPurchased(ctx context.Context, fanID, mediaID uint) (bool, error) {
	args := m.Called(ctx, fanID, mediaID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageStore) DeliverBump(ctx context.Context, bump *models.BumpMessage, sentBy uint, now time.Time) (bool, error) {
	args := m.Called(ctx, bump, sentBy, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageStore) SetBumpStatus(ctx context.Context, id uint, status models.BumpStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockMessageStore) CreateCampaign(ctx context.Context, c *models.RetargetingCampaign) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockMessageStore) DueCampaigns(ctx context.Context, now time.Time, limit int) ([]models.RetargetingCampaign, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]models.RetargetingCampaign), args.Error(1)
}

func (m *mockMessageStore) MarkCampaignSending(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMessageStore) CompleteCampaign(ctx context.Context, id uint, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockMessageStore) CampaignTargets(ctx context.Context, c *models.RetargetingCampaign, now time.Time, limit int) ([]uint, error) {
	args := m.Called(ctx, c, now, limit)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockMessageStore) SendCampaignMessage(ctx context.Context, c *models.RetargetingCampaign, fanID, sentBy uint) (bool, error) {
	args := m.Called(ctx, c, fanID, sentBy)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageStore) ExpireFlashSales(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageStore) CreateMemory(ctx context.Context, mem *models.ChatterMemory) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *mockMessageStore) Memories(ctx context.Context, chatterID, fanID uint, limit int) ([]models.ChatterMemory, error) {
	args := m.Called(ctx, chatterID, fanID, limit)
	return args.Get(0).([]models.ChatterMemory), args.Error(1)
}

func (m *mockMessageStore) DeleteMemories(ctx context.Context, kind models.MemoryKind, before time.Time) (int64, error) {
	args := m.Called(ctx, kind, before)
	return args.Get(0).(int64), args.Error(1)
}

type fakeScriptStore struct {
	scripts []models.Script
}

func (f *fakeScriptStore) Create(ctx context.Context, s *models.Script) error {
	s.ID = uint(len(f.scripts) + 1)
	f.scripts = append(f.scripts, *s)
	return nil
}

func (f *fakeScriptStore) GetByID(ctx context.Context, id uint) (*models.Script, error) {
	for i := range f.scripts {
		if f.scripts[i].ID == id {
			return &f.scripts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeScriptStore) ActiveByAgency(ctx context.Context, agencyID uint) ([]models.Script, error) {
	var out []models.Script
	for _, s := range f.scripts {
		if s.AgencyID == agencyID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScriptStore) Deactivate(ctx context.Context, id uint) error {
	for i := range f.scripts {
		if f.scripts[i].ID == id {
			f.scripts[i].IsActive = false
		}
	}
	return nil
}

type fakeReplyGenerator struct {
	reply string
	err   error
	notes []string
}

func (f *fakeReplyGenerator) GenerateReply(ctx context.Context, system string, notes []string, message string) (string, error) {
	f.notes = notes
	return f.reply, f.err
}
