package notify

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/models"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notify_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}, &models.RoleAssignment{}))
	return db
}

func TestDispatcherRecordsAuditRowAndDelivers(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()
	d := NewDispatcher(db, recorder)

	d.Dispatch(TemplateOrderCreated, 7, []string{"pcm@x.com", "pcm2@x.com"})

	var audit models.Notification
	require.NoError(t, db.First(&audit, "service_order_id = ?", 7).Error)
	assert.Equal(t, TemplateOrderCreated, audit.Template)
	assert.Equal(t, "pcm@x.com,pcm2@x.com", audit.Recipients)

	assert.Eventually(t, func() bool {
		sent := recorder.Sent()
		return len(sent) == 1 && sent[0].OrderID == 7
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		var n models.Notification
		if err := db.First(&n, "id = ?", audit.ID).Error; err != nil {
			return false
		}
		return n.Status == models.NotificationStatusSent
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcherMarksFailedDeliveries(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()
	recorder.FailWith(errors.New("smtp down"))
	d := NewDispatcher(db, recorder)

	d.Dispatch(TemplateOrderClosed, 3, []string{"req@x.com"})

	assert.Eventually(t, func() bool {
		var n models.Notification
		if err := db.First(&n, "service_order_id = ?", 3).Error; err != nil {
			return false
		}
		return n.Status == models.NotificationStatusFailed && n.Error == "smtp down"
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcherSkipsEmptyRecipientList(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder()
	d := NewDispatcher(db, recorder)

	d.Dispatch(TemplateOrderCreated, 9, nil)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, recorder.Sent())
}

func TestRoleRecipients(t *testing.T) {
	db := newTestDB(t)
	for _, ra := range []models.RoleAssignment{
		{Email: "a@x.com", Role: models.RolePcm},
		{Email: "b@x.com", Role: models.RoleCipa},
		{Email: "b@x.com", Role: models.RoleSafety},
		{Email: "c@x.com", Role: models.RoleLaboratory},
	} {
		require.NoError(t, db.Create(&ra).Error)
	}

	emails := RoleRecipients(db, models.RoleCipa, models.RoleSafety)
	assert.ElementsMatch(t, []string{"b@x.com"}, emails)

	emails = RoleRecipients(db, models.RolePcm)
	assert.ElementsMatch(t, []string{"a@x.com"}, emails)

	assert.Empty(t, RoleRecipients(db, models.RoleAdministrator))
}

func TestMultiNotifierFansOutPastFailures(t *testing.T) {
	failing := NewRecorder()
	failing.FailWith(errors.New("webhook 500"))
	healthy := NewRecorder()

	m := MultiNotifier{failing, healthy}
	err := m.Notify(TemplateExecutionReady, 12, []string{"pcm@x.com"})

	require.Error(t, err)
	assert.Len(t, healthy.Sent(), 1, "later channels still get their attempt")
}

func TestSlackNotifierPostsWebhook(t *testing.T) {
	var gotURL string
	var gotMsg *slack.WebhookMessage
	s := NewSlackNotifier("https://hooks.slack.com/services/T/B/X")
	s.post = func(url string, msg *slack.WebhookMessage) error {
		gotURL = url
		gotMsg = msg
		return nil
	}

	require.NoError(t, s.Notify(TemplateSafetyReviewRequested, 21, []string{"cipa@x.com"}))
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", gotURL)
	require.NotNil(t, gotMsg)
	require.Len(t, gotMsg.Attachments, 1)
	assert.Contains(t, gotMsg.Attachments[0].Title, "#21")
}

func TestScriptNotifierSkipsUnknownTemplate(t *testing.T) {
	s := NewScriptNotifier(t.TempDir())
	assert.NoError(t, s.Notify("order_reopened", 5, []string{"req@x.com"}))
}

func TestScriptNamesCoverEveryTemplate(t *testing.T) {
	for _, template := range []string{
		TemplateOrderCreated,
		TemplateSafetyReviewRequested,
		TemplateLabEvaluationRequested,
		TemplateExecutionReady,
		TemplateLabReevaluationRequested,
		TemplateOrderClosed,
		TemplateOrderRejected,
	} {
		assert.NotEmpty(t, scriptNames[template], "template %s has no mail script", template)
	}
	assert.Equal(t, "pcmtorequester.py", scriptNames[TemplateOrderRejected])
}
