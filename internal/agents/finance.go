package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/swapdesk/swapdesk/internal/refdata"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// FinanceOfficer handles billing and payment complaints.
type FinanceOfficer struct {
	refs refdata.Catalogs
}

func NewFinanceOfficer(refs refdata.Catalogs) *FinanceOfficer {
	return &FinanceOfficer{refs: refs}
}

func (a *FinanceOfficer) Role() models.AgentRole { return models.RoleFinanceOfficer }

func (a *FinanceOfficer) Capabilities() []string {
	return []string{
		"payment_processing",
		"refund_management",
		"billing_dispute_resolution",
		"transaction_investigation",
	}
}

func (a *FinanceOfficer) CanHandle(c *models.Complaint) bool {
	return c.Type == models.TypePayment
}

func (a *FinanceOfficer) ProcessComplaint(ctx context.Context, c *models.Complaint) (models.AgentDecision, error) {
	customer, _ := a.refs.Customers.FindCustomer(c)
	lower := strings.ToLower(c.Description)

	payment, found := a.refs.Payments.FindPayment(c)
	if found {
		if strings.Contains(lower, "refund") && payment.Status == models.PaymentCompleted {
			d := newDecision(a.Role(),
				"Process refund",
				fmt.Sprintf("Valid refund request for transaction %s (amount: %.2f)", payment.ID, payment.Amount),
				"Issue refund to original payment method and notify customer",
				0.95,
				models.OutcomeResolved,
			)
			d.Data = map[string]interface{}{
				"payment":       payment,
				"customer":      customer,
				"refund_amount": payment.Amount,
			}
			return d, nil
		}

		duplicate := strings.Contains(lower, "charged twice") || strings.Contains(lower, "duplicate")
		failedCharge := payment.Status == models.PaymentFailed && strings.Contains(lower, "charged")
		if duplicate || failedCharge {
			d := newDecision(a.Role(),
				"Investigate payment discrepancy",
				fmt.Sprintf("Payment discrepancy reported for transaction %s (status: %s)", payment.ID, payment.Status),
				"Audit transaction history and reconcile with payment processor",
				0.8,
				models.OutcomeInProgress,
			)
			d.Data = map[string]interface{}{
				"payment":  payment,
				"customer": customer,
			}
			return d, nil
		}
	}

	d := newDecision(a.Role(),
		"Request additional payment information",
		"Insufficient payment details to resolve the complaint",
		"Ask customer for transaction reference, date and payment method",
		0.7,
		models.OutcomeInProgress,
	)
	d.Data = map[string]interface{}{
		"customer":         customer,
		"payment_on_file":  found,
		"needs_more_input": true,
	}
	return d, nil
}
