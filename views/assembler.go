// Package views builds the denormalized order representations served by
// the API. The assembler joins the order row with every stage record that
// exists and resolves identity emails to display names through the
// employee directory.
package views

import (
	"github.com/antoniovieira1/api-solicitacao-servico/directory"
	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/repository"

	"gorm.io/gorm"
)

// NameResolver maps an email to a directory entry. Satisfied by
// *directory.Client.
type NameResolver interface {
	Find(email string) (directory.User, bool)
}

// Assembler builds order views from the database and the directory.
type Assembler struct {
	db       *gorm.DB
	resolver NameResolver
}

// NewAssembler creates an Assembler bound to db and resolver.
func NewAssembler(db *gorm.DB, resolver NameResolver) *Assembler {
	return &Assembler{db: db, resolver: resolver}
}

// resolveName returns the directory display name for email, falling back
// to the raw email for identities the directory does not know.
func (a *Assembler) resolveName(email string) string {
	if email == "" {
		return ""
	}
	if user, ok := a.resolver.Find(email); ok && user.Name != "" {
		return user.Name
	}
	return email
}

func (a *Assembler) resolveNamePtr(email *string) string {
	if email == nil {
		return ""
	}
	return a.resolveName(*email)
}

// Assemble loads one order and every stage record it has and returns the
// full read model.
func (a *Assembler) Assemble(orderID int64) (*models.OrderView, error) {
	order, err := repository.NewOrderRepository(a.db).GetByID(orderID)
	if err != nil {
		return nil, err
	}

	view := &models.OrderView{
		ID:              order.ID,
		OssmNumber:      order.OssmNumber,
		Sector:          order.Sector,
		Equipment:       order.Equipment,
		Location:        order.Location,
		Service:         order.ServiceDescription,
		Component:       order.Component,
		Priority:        order.Priority,
		MaintenanceType: order.MaintenanceType,
		ImpactLevel:     order.ImpactLevel,
		Observation:     order.Observation,
		RequesterEmail:  order.RequesterEmail,
		RequesterName:   a.resolveName(order.RequesterEmail),
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		// CIPA participation defaults to required until PCM says otherwise.
		RequiresCipa: true,
	}

	pcm, err := repository.NewPcmAnalysisStore(a.db).GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if pcm != nil {
		view.PcmComments = pcm.PcmComments
		view.RequiresLabEvaluation = pcm.LabRequired()
		view.RequiresCipa = pcm.CipaRequired()
		view.ScheduledStartDate = pcm.ScheduledStartDate
		view.ScheduledEndDate = pcm.ScheduledEndDate
		view.TotalDowntime = pcm.TotalDowntime
		view.AnalystEmail = pcm.AnalystEmail
		view.AnalysisDate = pcm.AnalysisDate

		if pcm.ApprovalStatus != nil || pcm.ApproverEmail != nil {
			view.PcmApproval = &models.PcmApprovalView{
				Approved:      pcm.ApprovalStatus != nil && *pcm.ApprovalStatus,
				Justification: pcm.ApprovalJustification,
				UserName:      a.resolveNamePtr(pcm.ApproverEmail),
				Date:          pcm.ApprovalDate,
			}
		}
	}

	safety, err := repository.NewSafetyAnalysisStore(a.db).GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if safety != nil {
		requiresPermit := safety.RequiresWorkPermit != nil && *safety.RequiresWorkPermit
		view.SafetyAnalysis = &models.SafetyAnalysisView{
			ID:                 safety.ID,
			RequiresWorkPermit: requiresPermit,
			WorkPermitID:       safety.WorkPermitID,
			Comments:           safety.Comments,
			AnalystEmail:       safety.AnalystEmail,
			AnalystName:        a.resolveNamePtr(safety.AnalystEmail),
			AnalysisDate:       safety.AnalysisDate,
		}
		if safety.Approved != nil || safety.ApproverEmail != nil {
			approved := safety.Approved != nil && *safety.Approved
			comments := safety.RejectionReason
			if approved {
				comments = safety.ApprovedReason
			}
			view.SafetyValidation = &models.SafetyValidationView{
				Approved:            approved,
				Comments:            comments,
				UserName:            a.resolveNamePtr(safety.ApproverEmail),
				ApprovedReason:      safety.ApprovedReason,
				RejectionReason:     safety.RejectionReason,
				Date:                safety.ApprovalDate,
				WorkPermitValidated: requiresPermit && safety.WorkPermitID != nil && *safety.WorkPermitID != "",
			}
		}
	}

	lab, err := repository.NewLabAnalysisStore(a.db).GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if lab != nil {
		view.LabAnalysis = &models.LabAnalysisView{
			ID:                      lab.ID,
			ServiceOrderID:          lab.ServiceOrderID,
			ReleasedForUse:          lab.ReleasedForUse != nil && *lab.ReleasedForUse,
			RequiresRequalification: lab.RequalificationRequired(),
			Comments:                lab.Comments,
			EvaluatorEmail:          lab.EvaluatorEmail,
			UserName:                a.resolveNamePtr(lab.EvaluatorEmail),
			AnalysisDate:            lab.AnalysisDate,
		}
	}

	exec, err := repository.NewPcmExecutionStore(a.db).GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if exec != nil {
		view.PcmExecution = &models.PcmExecutionView{
			ID:                    exec.ID,
			ServiceOrderID:        exec.ServiceOrderID,
			Description:           exec.Description,
			ResponsibleName:       exec.ResponsibleName,
			ExecutedByEmail:       exec.ExecutedByEmail,
			UserName:              a.resolveNamePtr(exec.ExecutedByEmail),
			ExecutionDate:         exec.ExecutionDate,
			PurchaseRequested:     exec.PurchaseRequested != nil && *exec.PurchaseRequested,
			PurchaseRequestNumber: exec.PurchaseRequestNumber,
		}
	}

	reeval, err := repository.NewLabReevaluationStore(a.db).GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if reeval != nil {
		view.LabReevaluation = &models.LabReevaluationView{
			ID:             reeval.ID,
			ServiceOrderID: reeval.ServiceOrderID,
			Comments:       reeval.Comments,
			EvaluatorEmail: reeval.EvaluatorEmail,
			UserName:       a.resolveNamePtr(reeval.EvaluatorEmail),
			EvaluationDate: reeval.EvaluationDate,
			ReleasedForUse: reeval.ReleasedForUse != nil && *reeval.ReleasedForUse,
		}
	}

	return view, nil
}

// Summaries returns every order, newest first, with requester names
// resolved for the list screen.
func (a *Assembler) Summaries() ([]models.OrderSummary, error) {
	orders, err := repository.NewOrderRepository(a.db).ListAll()
	if err != nil {
		return nil, err
	}
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, models.OrderSummary{
			ServiceOrder:  order,
			RequesterName: a.resolveName(order.RequesterEmail),
		})
	}
	return summaries, nil
}
