package workflow

import (
	"fmt"
	"log"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/notify"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
	"github.com/antoniovieira1/api-solicitacao-servico/repository"
	"github.com/antoniovieira1/api-solicitacao-servico/views"

	"gorm.io/gorm"
)

// Engine executes workflow actions against service orders.
type Engine struct {
	db         *gorm.DB
	dispatcher *notify.Dispatcher
	assembler  *views.Assembler
}

// NewEngine creates an Engine. dispatcher may be nil in tests that do not
// care about notifications.
func NewEngine(db *gorm.DB, dispatcher *notify.Dispatcher, assembler *views.Assembler) *Engine {
	return &Engine{db: db, dispatcher: dispatcher, assembler: assembler}
}

// Execute applies one action to the order. The stage write, the OSSM
// assignment and the status change commit atomically; on any failure the
// order is left exactly as it was. The returned view reflects the order
// after the transition, and summary is a short human description of what
// happened.
func (e *Engine) Execute(orderID int64, action Action) (*models.OrderView, string, error) {
	if err := action.Validate(); err != nil {
		return nil, "", err
	}

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, "", errs.NewPersistenceError("begin workflow transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	orders := repository.NewOrderRepository(tx)
	order, err := orders.GetByIDLocked(orderID)
	if err != nil {
		tx.Rollback()
		return nil, "", err
	}

	if models.IsTerminalStatus(order.Status) {
		tx.Rollback()
		return nil, "", errs.NewInvalidInputError("actionType",
			fmt.Sprintf("order %d is %s and accepts no further actions", orderID, order.Status))
	}
	if !actionAllowedFrom(action.Type, order.Status) {
		tx.Rollback()
		return nil, "", errs.NewInvalidInputError("actionType",
			fmt.Sprintf("action %s is not allowed while the order is %s", action.Type, order.Status))
	}

	finalStatus, summary, err := e.apply(tx, order, action)
	if err != nil {
		tx.Rollback()
		return nil, "", err
	}

	if err := orders.UpdateStatus(orderID, finalStatus); err != nil {
		tx.Rollback()
		return nil, "", err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, "", errs.NewPersistenceError("commit workflow transaction", err)
	}
	log.Printf("✅ Ordem %d: %s -> %s (%s)", orderID, order.Status, finalStatus, action.Type)

	e.notifyTransition(order, finalStatus)

	view, err := e.assembler.Assemble(orderID)
	if err != nil {
		return nil, "", err
	}
	return view, summary, nil
}

// apply runs the per-action stage writes on tx and resolves the final
// status. It never touches the order row itself.
func (e *Engine) apply(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	switch action.Type {
	case ActionApprovePcm:
		return e.applyPcmApproval(tx, order, action)
	case ActionRejectPcm:
		return e.applyPcmRejection(tx, order, action)
	case ActionApproveCipa:
		return e.applyCipaDecision(tx, order, action, action.SafetyValidation)
	case ActionRejectCipa:
		return e.applyCipaRejection(tx, order, action)
	case ActionSubmitLabFirstEval:
		return e.applyLabFirstEval(tx, order, action)
	case ActionSubmitPcmExecution:
		return e.applyPcmExecution(tx, order, action)
	case ActionSubmitLabReeval:
		return e.applyLabReevaluation(tx, order, action)
	}
	return "", "", errs.NewInvalidInputError("actionType", fmt.Sprintf("unknown action type %q", action.Type))
}

func (e *Engine) applyPcmApproval(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	p := action.PcmApproval
	approved := p.Approved != nil && *p.Approved
	when := action.actionTime()

	upsert := repository.PcmAnalysisUpsert{
		PcmComments:           p.PcmComments,
		RequiresLabEvaluation: p.RequiresLabEvaluation,
		RequiresCipa:          p.RequiresCipa,
		ScheduledStartDate:    p.ScheduledStartDate,
		ScheduledEndDate:      p.ScheduledEndDate,
		TotalDowntime:         p.TotalDowntime,
		AnalystEmail:          p.AnalystEmail,
		AnalysisDate:          p.AnalysisDate,
		ApprovalStatus:        &approved,
		ApprovalJustification: p.Justification,
		ApproverEmail:         &action.User.UserID,
		ApprovalDate:          &when,
	}
	store := repository.NewPcmAnalysisStore(tx)
	if err := store.Upsert(order.ID, upsert); err != nil {
		return "", "", err
	}

	if !approved {
		return models.StatusRejected, "ordem reprovada pelo PCM", nil
	}

	if order.OssmNumber == nil {
		n, err := repository.NewOrderRepository(tx).AssignOssmNumber(order.ID)
		if err != nil {
			return "", "", err
		}
		order.OssmNumber = &n
	}

	// The routing flags come from the stored row, so an approval that
	// omits them honors what the analyst filled in earlier.
	rec, err := store.GetByOrderID(order.ID)
	if err != nil {
		return "", "", err
	}
	if rec == nil {
		return "", "", errs.NewInvariantViolationError(
			fmt.Sprintf("order %d has no PCM analysis record after approval write", order.ID))
	}

	switch {
	case rec.CipaRequired():
		return models.StatusPendingSafetyReview, "ordem aprovada pelo PCM, aguardando analise de seguranca", nil
	case rec.LabRequired():
		return models.StatusUnderReview, "ordem aprovada pelo PCM, aguardando avaliacao do laboratorio", nil
	default:
		return models.StatusPendingExecution, "ordem aprovada pelo PCM, liberada para execucao", nil
	}
}

func (e *Engine) applyPcmRejection(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	rejected := false
	when := action.actionTime()
	justification := action.User.Comments
	if action.PcmApproval != nil && action.PcmApproval.Justification != nil {
		justification = action.PcmApproval.Justification
	}
	err := repository.NewPcmAnalysisStore(tx).Upsert(order.ID, repository.PcmAnalysisUpsert{
		ApprovalStatus:        &rejected,
		ApprovalJustification: justification,
		ApproverEmail:         &action.User.UserID,
		ApprovalDate:          &when,
	})
	if err != nil {
		return "", "", err
	}
	return models.StatusRejected, "ordem reprovada pelo PCM", nil
}

func (e *Engine) applyCipaDecision(tx *gorm.DB, order *models.ServiceOrder, action Action, p *SafetyValidationData) (string, string, error) {
	pcm, err := repository.NewPcmAnalysisStore(tx).GetByOrderID(order.ID)
	if err != nil {
		return "", "", err
	}
	if pcm == nil {
		return "", "", errs.NewInvariantViolationError(
			fmt.Sprintf("order %d is awaiting safety review without a PCM analysis record", order.ID))
	}

	approved := p.Approved != nil && *p.Approved
	// Either reason column falls back to the free-form action comment when
	// the dedicated field was not filled in.
	approvedReason := p.ApprovedReason
	if approvedReason == nil {
		approvedReason = action.User.Comments
	}
	rejectionReason := p.RejectionReason
	if rejectionReason == nil {
		rejectionReason = action.User.Comments
	}
	when := action.actionTime()
	err = repository.NewSafetyAnalysisStore(tx).Upsert(order.ID, repository.SafetyAnalysisUpsert{
		Approved:        &approved,
		ApprovedReason:  approvedReason,
		RejectionReason: rejectionReason,
		ApproverEmail:   &action.User.UserID,
		ApprovalDate:    &when,
	})
	if err != nil {
		return "", "", err
	}

	if !approved {
		return models.StatusRejected, "ordem reprovada pela seguranca", nil
	}
	if pcm.LabRequired() {
		return models.StatusUnderReview, "seguranca aprovou, aguardando avaliacao do laboratorio", nil
	}
	return models.StatusPendingExecution, "seguranca aprovou, liberada para execucao", nil
}

func (e *Engine) applyCipaRejection(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	p := action.SafetyValidation
	if p == nil {
		rejected := false
		p = &SafetyValidationData{Approved: &rejected, RejectionReason: action.User.Comments}
	} else if p.Approved == nil {
		rejected := false
		p.Approved = &rejected
	}
	return e.applyCipaDecision(tx, order, action, p)
}

func (e *Engine) applyLabFirstEval(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	p := action.LabEvaluation
	when := action.actionTime()
	err := repository.NewLabAnalysisStore(tx).Upsert(order.ID, repository.LabAnalysisUpsert{
		ReleasedForUse:          p.ReleasedForUse,
		RequiresRequalification: p.RequiresRequalification,
		Comments:                p.Comments,
		EvaluatorEmail:          &action.User.UserID,
		AnalysisDate:            &when,
	})
	if err != nil {
		return "", "", err
	}
	// The requalification flag only matters after execution.
	return models.StatusPendingExecution, "laboratorio avaliou, liberada para execucao", nil
}

func (e *Engine) applyPcmExecution(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	p := action.PcmExecution
	when := action.actionTime()
	err := repository.NewPcmExecutionStore(tx).Upsert(order.ID, repository.PcmExecutionUpsert{
		Description:           p.Description,
		ResponsibleName:       p.ResponsibleName,
		ExecutedByEmail:       &action.User.UserID,
		ExecutionDate:         &when,
		PurchaseRequested:     p.PurchaseRequested,
		PurchaseRequestNumber: p.PurchaseRequestNumber,
	})
	if err != nil {
		return "", "", err
	}

	pcm, err := repository.NewPcmAnalysisStore(tx).GetByOrderID(order.ID)
	if err != nil {
		return "", "", err
	}
	if pcm == nil {
		return "", "", errs.NewInvariantViolationError(
			fmt.Sprintf("order %d reached execution without a PCM analysis record", order.ID))
	}
	if !pcm.LabRequired() {
		return models.StatusClosed, "execucao registrada, ordem finalizada", nil
	}

	lab, err := repository.NewLabAnalysisStore(tx).GetByOrderID(order.ID)
	if err != nil {
		return "", "", err
	}
	if lab == nil {
		return "", "", errs.NewInvariantViolationError(
			fmt.Sprintf("order %d reached execution without the required laboratory evaluation", order.ID))
	}
	if lab.RequalificationRequired() {
		return models.StatusPendingLabReevaluation, "execucao registrada, aguardando reavaliacao do laboratorio", nil
	}
	return models.StatusClosed, "execucao registrada, ordem finalizada", nil
}

func (e *Engine) applyLabReevaluation(tx *gorm.DB, order *models.ServiceOrder, action Action) (string, string, error) {
	p := action.LabReevaluation
	when := action.actionTime()
	err := repository.NewLabReevaluationStore(tx).Upsert(order.ID, repository.LabReevaluationUpsert{
		Comments:       p.Comments,
		EvaluatorEmail: &action.User.UserID,
		EvaluationDate: &when,
		ReleasedForUse: p.ReleasedForUse,
	})
	if err != nil {
		return "", "", err
	}
	// Re-evaluation always closes the order; the released-for-use flag is
	// recorded for the report but does not gate closure.
	return models.StatusClosed, "reavaliacao registrada, ordem finalizada", nil
}

// notifyTransition tells the department now responsible for the order, or
// the requester when the order reached a terminal status. Runs after
// commit; a notification failure never undoes a transition.
func (e *Engine) notifyTransition(order *models.ServiceOrder, finalStatus string) {
	if e.dispatcher == nil {
		return
	}
	switch finalStatus {
	case models.StatusPendingSafetyReview:
		e.dispatcher.Dispatch(notify.TemplateSafetyReviewRequested, order.ID,
			notify.RoleRecipients(e.db, models.RoleCipa, models.RoleSafety))
	case models.StatusUnderReview:
		e.dispatcher.Dispatch(notify.TemplateLabEvaluationRequested, order.ID,
			notify.RoleRecipients(e.db, models.RoleLaboratory))
	case models.StatusPendingExecution:
		e.dispatcher.Dispatch(notify.TemplateExecutionReady, order.ID,
			notify.RoleRecipients(e.db, models.RolePcm))
	case models.StatusPendingLabReevaluation:
		e.dispatcher.Dispatch(notify.TemplateLabReevaluationRequested, order.ID,
			notify.RoleRecipients(e.db, models.RoleLaboratory))
	case models.StatusClosed:
		e.dispatcher.Dispatch(notify.TemplateOrderClosed, order.ID, []string{order.RequesterEmail})
	case models.StatusRejected:
		e.dispatcher.Dispatch(notify.TemplateOrderRejected, order.ID, []string{order.RequesterEmail})
	}
}
