package repository

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ServiceOrder{},
		&models.PcmAnalysisRecord{},
		&models.SafetyAnalysisRecord{},
		&models.LabAnalysisRecord{},
		&models.PcmExecutionRecord{},
		&models.LabReevaluationRecord{},
	))
	return db
}

func strPtr(s string) *string        { return &s }
func boolPtr(b bool) *bool           { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func newOrder(t *testing.T, repo *OrderRepository, requester string) *models.ServiceOrder {
	t.Helper()
	order := &models.ServiceOrder{
		Sector:             "Linha 3",
		Equipment:          "Prensa",
		Location:           "Galpao B",
		ServiceDescription: "Troca de rolamento",
		RequesterEmail:     requester,
	}
	require.NoError(t, repo.Create(order))
	return order
}

func TestOrderCreateDefaults(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	order := newOrder(t, repo, "maria@fabrica.com")

	assert.NotZero(t, order.ID)
	assert.Equal(t, models.StatusOpen, order.Status)
	assert.Equal(t, models.ClassificationToDefine, order.Priority)
	assert.Equal(t, models.ClassificationToDefine, order.MaintenanceType)
	assert.Nil(t, order.OssmNumber)
}

func TestOrderGetNotFound(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	_, err := repo.GetByID(9999)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)

	err = repo.UpdateStatus(9999, models.StatusClosed)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestOrderListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	older := newOrder(t, repo, "a@fabrica.com")
	newer := newOrder(t, repo, "b@fabrica.com")
	require.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	orders, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestOrderUpdateClassificationPartial(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	order := newOrder(t, repo, "maria@fabrica.com")

	err := repo.UpdateClassification(order.ID, OrderClassification{
		Priority:  strPtr("alta"),
		Component: strPtr("rolamento"),
	})
	require.NoError(t, err)

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "alta", got.Priority)
	assert.Equal(t, "rolamento", got.Component)
	// Omitted fields keep their stored value.
	assert.Equal(t, models.ClassificationToDefine, got.MaintenanceType)

	// An all-nil update is a no-op, not an error.
	assert.NoError(t, repo.UpdateClassification(order.ID, OrderClassification{}))
}

func TestAssignOssmNumberSequence(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	first := newOrder(t, repo, "a@fabrica.com")
	second := newOrder(t, repo, "b@fabrica.com")

	n1, err := repo.AssignOssmNumber(first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n1)

	n2, err := repo.AssignOssmNumber(second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n2)
}

func TestAssignOssmNumberKeepsFirstAssignment(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	order := newOrder(t, repo, "a@fabrica.com")

	n1, err := repo.AssignOssmNumber(order.ID)
	require.NoError(t, err)

	n2, err := repo.AssignOssmNumber(order.ID)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OssmNumber)
	assert.Equal(t, n1, *got.OssmNumber)
}

func TestAssignOssmNumberConcurrentOrders(t *testing.T) {
	db := newTestDB(t)
	// One connection keeps sqlite from returning busy errors under
	// concurrent writers.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewOrderRepository(db)
	const workers = 6
	ids := make([]int64, workers)
	for i := range ids {
		ids[i] = newOrder(t, repo, fmt.Sprintf("user%d@fabrica.com", i)).ID
	}

	numbers := make(chan int64, workers)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			n, err := repo.AssignOssmNumber(id)
			assert.NoError(t, err)
			numbers <- n
		}(id)
	}
	wg.Wait()
	close(numbers)

	seen := map[int64]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "number %d handed out twice", n)
		seen[n] = true
	}
	for want := int64(1); want <= workers; want++ {
		assert.True(t, seen[want], "sequence misses %d", want)
	}
}

func TestPcmAnalysisMergeUpsert(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	store := NewPcmAnalysisStore(db)
	order := newOrder(t, orders, "maria@fabrica.com")

	// Data-fill phase.
	err := store.Upsert(order.ID, PcmAnalysisUpsert{
		PcmComments:           strPtr("trocar rolamento e alinhar eixo"),
		RequiresLabEvaluation: boolPtr(true),
		RequiresCipa:          boolPtr(false),
		AnalystEmail:          strPtr("pcm@fabrica.com"),
		AnalysisDate:          timePtr(time.Now()),
	})
	require.NoError(t, err)

	// Approval phase omits every data-fill column.
	err = store.Upsert(order.ID, PcmAnalysisUpsert{
		ApprovalStatus:        boolPtr(true),
		ApprovalJustification: strPtr("dentro do orcamento"),
		ApproverEmail:         strPtr("chefe@fabrica.com"),
		ApprovalDate:          timePtr(time.Now()),
	})
	require.NoError(t, err)

	rec, err := store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	// The merge preserved the first phase.
	require.NotNil(t, rec.PcmComments)
	assert.Equal(t, "trocar rolamento e alinhar eixo", *rec.PcmComments)
	assert.True(t, rec.LabRequired())
	assert.False(t, rec.CipaRequired())
	require.NotNil(t, rec.ApprovalStatus)
	assert.True(t, *rec.ApprovalStatus)

	var count int64
	require.NoError(t, db.Model(&models.PcmAnalysisRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPcmAnalysisIdenticalResubmit(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	store := NewPcmAnalysisStore(db)
	order := newOrder(t, orders, "maria@fabrica.com")

	submit := PcmAnalysisUpsert{
		PcmComments:           strPtr("trocar rolamento"),
		RequiresLabEvaluation: boolPtr(true),
		RequiresCipa:          boolPtr(true),
		AnalystEmail:          strPtr("pcm@fabrica.com"),
		AnalysisDate:          timePtr(time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)),
	}
	require.NoError(t, store.Upsert(order.ID, submit))
	first, err := store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same submission again, field for field.
	require.NoError(t, store.Upsert(order.ID, submit))
	second, err := store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PcmComments, second.PcmComments)
	assert.Equal(t, first.RequiresLabEvaluation, second.RequiresLabEvaluation)
	assert.Equal(t, first.RequiresCipa, second.RequiresCipa)
	assert.Equal(t, first.AnalystEmail, second.AnalystEmail)
	require.NotNil(t, second.AnalysisDate)
	assert.True(t, first.AnalysisDate.Equal(*second.AnalysisDate))

	var count int64
	require.NoError(t, db.Model(&models.PcmAnalysisRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPcmAnalysisGetAbsent(t *testing.T) {
	store := NewPcmAnalysisStore(newTestDB(t))
	rec, err := store.GetByOrderID(42)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSafetyAnalysisReasonExclusivity(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	store := NewSafetyAnalysisStore(db)
	order := newOrder(t, orders, "maria@fabrica.com")

	err := store.Upsert(order.ID, SafetyAnalysisUpsert{
		RequiresWorkPermit: boolPtr(true),
		WorkPermitID:       strPtr("PT-2024-031"),
		Comments:           strPtr("risco de altura"),
		AnalystEmail:       strPtr("cipa@fabrica.com"),
	})
	require.NoError(t, err)

	err = store.Upsert(order.ID, SafetyAnalysisUpsert{
		Approved:        boolPtr(false),
		RejectionReason: strPtr("sem PT valida"),
		ApproverEmail:   strPtr("seguranca@fabrica.com"),
	})
	require.NoError(t, err)

	rec, err := store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.RejectionReason)
	assert.Equal(t, "sem PT valida", *rec.RejectionReason)
	assert.Nil(t, rec.ApprovedReason)
	// The risk assessment survived the rejection write.
	require.NotNil(t, rec.WorkPermitID)
	assert.Equal(t, "PT-2024-031", *rec.WorkPermitID)

	// A later approval flips the reason columns.
	err = store.Upsert(order.ID, SafetyAnalysisUpsert{
		Approved:       boolPtr(true),
		ApprovedReason: strPtr("PT emitida"),
	})
	require.NoError(t, err)

	rec, err = store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.ApprovedReason)
	assert.Equal(t, "PT emitida", *rec.ApprovedReason)
	assert.Nil(t, rec.RejectionReason)
}

func TestLabAnalysisUpsertAndFlags(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	store := NewLabAnalysisStore(db)
	order := newOrder(t, orders, "maria@fabrica.com")

	err := store.Upsert(order.ID, LabAnalysisUpsert{
		ReleasedForUse:          boolPtr(true),
		RequiresRequalification: boolPtr(true),
		Comments:                strPtr("requalificar apos manutencao"),
		EvaluatorEmail:          strPtr("lab@fabrica.com"),
	})
	require.NoError(t, err)

	rec, err := store.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.RequalificationRequired())

	var absent *models.LabAnalysisRecord
	assert.False(t, absent.RequalificationRequired())
}

func TestExecutionAndReevaluationUpsert(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	exec := NewPcmExecutionStore(db)
	reeval := NewLabReevaluationStore(db)
	order := newOrder(t, orders, "maria@fabrica.com")

	err := exec.Upsert(order.ID, PcmExecutionUpsert{
		Description:           strPtr("rolamento substituido"),
		ResponsibleName:       strPtr("Joao"),
		ExecutedByEmail:       strPtr("pcm@fabrica.com"),
		PurchaseRequested:     boolPtr(true),
		PurchaseRequestNumber: strPtr("SC-7781"),
	})
	require.NoError(t, err)

	got, err := exec.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.PurchaseRequestNumber)
	assert.Equal(t, "SC-7781", *got.PurchaseRequestNumber)

	err = reeval.Upsert(order.ID, LabReevaluationUpsert{
		Comments:       strPtr("equipamento liberado"),
		EvaluatorEmail: strPtr("lab@fabrica.com"),
		ReleasedForUse: boolPtr(true),
	})
	require.NoError(t, err)

	rrec, err := reeval.GetByOrderID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, rrec)
	require.NotNil(t, rrec.ReleasedForUse)
	assert.True(t, *rrec.ReleasedForUse)
}
