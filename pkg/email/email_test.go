package email

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/resendlabs/resend-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testConfig = Config{FromAddress: "noreply@fanvault.test", FromName: "FanVault", FrontendURL: "https://fanvault.test"}

func newTestService(t *testing.T, rdb *redis.Client) *EmailService {
	svc, err := NewEmailService(rdb, testConfig, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestRender_VerifyEmail(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestService(t, db)

	html, err := svc.render("verify-email.html", map[string]interface{}{
		"FullName": "Ada",
		"Email":    "ada@example.com",
		"Link":     "https://fanvault.test/verify-email?token=abc",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hi Ada,")
	assert.Contains(t, html, "https://fanvault.test/verify-email?token=abc")
	assert.Contains(t, html, "ada@example.com")
}

func TestSendVerification_Queues(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := newTestService(t, db)

	mock.Regexp().ExpectLPush(QueueKey, `.*verify-email\?token=tok123.*`).SetVal(1)

	err := svc.SendVerification(context.Background(), "ada@example.com", "Ada", "tok123")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendPayoutPaid_QueueError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := newTestService(t, db)

	mock.Regexp().ExpectLPush(QueueKey, `.*`).SetErr(errors.New("connection refused"))

	err := svc.SendPayoutPaid(context.Background(), "ada@example.com", "Ada", "120.00")
	assert.Error(t, err)
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := newTestService(t, db)

	mock.ExpectLLen(QueueKey).SetVal(4)
	assert.Equal(t, int64(4), svc.QueueLength(context.Background()))
}

func jobPayload(t *testing.T, tries int) string {
	data, err := json.Marshal(Job{Type: TypeWelcome, To: "ada@example.com", Subject: "Hi", HTML: "<p>hi</p>", Tries: tries})
	require.NoError(t, err)
	return string(data)
}

func newTestWorker(rdb *redis.Client, send SendFunc) *Worker {
	w := NewWorker(rdb, send, testConfig, zap.NewNop())
	w.pollWait = time.Second
	w.retryDelay = 0
	return w
}

func TestWorker_Sends(t *testing.T) {
	db, mock := redismock.NewClientMock()

	var got *resend.SendEmailRequest
	w := newTestWorker(db, func(req *resend.SendEmailRequest) (string, error) {
		got = req
		return "msg_1", nil
	})

	mock.ExpectBRPop(time.Second, QueueKey).SetVal([]string{QueueKey, jobPayload(t, 0)})
	mock.ExpectLLen(QueueKey).SetVal(0)

	require.NoError(t, w.ProcessNext(context.Background()))
	require.NotNil(t, got)
	assert.Equal(t, "FanVault <noreply@fanvault.test>", got.From)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_RetriesThenFails(t *testing.T) {
	db, mock := redismock.NewClientMock()
	w := newTestWorker(db, func(req *resend.SendEmailRequest) (string, error) {
		return "", errors.New("rate limited")
	})

	mock.ExpectBRPop(time.Second, QueueKey).SetVal([]string{QueueKey, jobPayload(t, 0)})
	mock.Regexp().ExpectLPush(QueueKey, `.*"tries":1.*`).SetVal(1)
	require.NoError(t, w.ProcessNext(context.Background()))

	mock.ExpectBRPop(time.Second, QueueKey).SetVal([]string{QueueKey, jobPayload(t, MaxAttempts-1)})
	mock.Regexp().ExpectLPush(FailedQueueKey, `.*rate limited.*`).SetVal(1)
	require.NoError(t, w.ProcessNext(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_EmptyQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	w := newTestWorker(db, nil)

	mock.ExpectBRPop(time.Second, QueueKey).RedisNil()
	assert.ErrorIs(t, w.ProcessNext(context.Background()), redis.Nil)
}

func TestWorker_BadPayloadIsDropped(t *testing.T) {
	db, mock := redismock.NewClientMock()
	w := newTestWorker(db, nil)

	mock.ExpectBRPop(time.Second, QueueKey).SetVal([]string{QueueKey, "not json"})
	assert.NoError(t, w.ProcessNext(context.Background()))
}

func TestTemplatesParse(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestService(t, db)
	for _, name := range []string{"verify-email.html", "reset-password.html", "welcome.html", "payout-paid.html"} {
		html, err := svc.render(name, map[string]interface{}{"Email": "x@example.com"})
		require.NoError(t, err, name)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(html), "</html>"), name)
	}
}
