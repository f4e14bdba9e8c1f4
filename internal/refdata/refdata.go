// Package refdata provides read-only lookup capabilities over the reference
// catalogs the triage agents consult: customers, known issues, technical
// solutions, stations, and payments.
//
// Each catalog is its own small interface so agents receive exactly the
// capabilities they need at construction time, and tests can inject fakes
// per catalog. All implementations must be safe for concurrent readers;
// no agent ever mutates a catalog.
package refdata

import "github.com/swapdesk/swapdesk/pkg/models"

// CustomerDirectory resolves the customer behind a complaint.
type CustomerDirectory interface {
	// FindCustomer matches by the complaint's customer id or email.
	FindCustomer(c *models.Complaint) (*models.Customer, bool)
}

// SolutionCatalog searches the known-solution catalog by free text.
type SolutionCatalog interface {
	// FindSolutions returns every solution whose keywords intersect the text.
	FindSolutions(text string) []models.TechnicalSolution
}

// IssueCatalog searches the known-issue catalog by free text.
type IssueCatalog interface {
	// FindIssue returns the first issue whose symptom list intersects the text.
	FindIssue(text string) (*models.KnownIssue, bool)
}

// StationDirectory resolves the station a complaint refers to.
type StationDirectory interface {
	FindStation(c *models.Complaint) (*models.StationRecord, bool)
}

// PaymentLedger resolves a customer's payment record.
type PaymentLedger interface {
	FindPayment(c *models.Complaint) (*models.PaymentRecord, bool)
}

// Catalogs bundles the five capability interfaces for injection into agents.
type Catalogs struct {
	Customers CustomerDirectory
	Solutions SolutionCatalog
	Issues    IssueCatalog
	Stations  StationDirectory
	Payments  PaymentLedger
}
