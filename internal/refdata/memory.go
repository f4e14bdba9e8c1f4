package refdata

import (
	"strings"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// Memory is an in-memory implementation of all five catalog interfaces.
// The backing slices are never mutated after construction, so it is safe
// for concurrent readers without locking.
type Memory struct {
	customers []models.Customer
	solutions []models.TechnicalSolution
	issues    []models.KnownIssue
	stations  []models.StationRecord
	payments  []models.PaymentRecord
}

// NewMemory builds an in-memory catalog set from seed data.
func NewMemory(seed Seed) *Memory {
	return &Memory{
		customers: seed.Customers,
		solutions: seed.Solutions,
		issues:    seed.Issues,
		stations:  seed.Stations,
		payments:  seed.Payments,
	}
}

// Catalogs returns the capability bundle backed by this store.
func (m *Memory) Catalogs() Catalogs {
	return Catalogs{
		Customers: m,
		Solutions: m,
		Issues:    m,
		Stations:  m,
		Payments:  m,
	}
}

// FindCustomer matches by customer id first, then email.
func (m *Memory) FindCustomer(c *models.Complaint) (*models.Customer, bool) {
	for i := range m.customers {
		if m.customers[i].ID == c.CustomerID || (c.CustomerEmail != "" && m.customers[i].Email == c.CustomerEmail) {
			cust := m.customers[i]
			return &cust, true
		}
	}
	return nil, false
}

// FindSolutions returns every solution with at least one keyword appearing
// in the text (case-insensitive substring match).
func (m *Memory) FindSolutions(text string) []models.TechnicalSolution {
	lower := strings.ToLower(text)
	var matched []models.TechnicalSolution
	for _, sol := range m.solutions {
		for _, kw := range sol.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, sol)
				break
			}
		}
	}
	return matched
}

// FindIssue returns the first known issue whose symptoms intersect the text.
func (m *Memory) FindIssue(text string) (*models.KnownIssue, bool) {
	lower := strings.ToLower(text)
	for i := range m.issues {
		for _, symptom := range m.issues[i].Symptoms {
			if strings.Contains(lower, strings.ToLower(symptom)) {
				issue := m.issues[i]
				return &issue, true
			}
		}
	}
	return nil, false
}

// FindStation matches a station whose id or location appears in the
// complaint text or metadata. When nothing matches it falls back to the
// first station in the catalog — complaints carry no structured location
// today, so the representative-station fallback is kept until ingestion
// supplies one (see DESIGN.md).
func (m *Memory) FindStation(c *models.Complaint) (*models.StationRecord, bool) {
	if len(m.stations) == 0 {
		return nil, false
	}

	if id, ok := c.Metadata["station_id"].(string); ok && id != "" {
		for i := range m.stations {
			if m.stations[i].ID == id {
				st := m.stations[i]
				return &st, true
			}
		}
	}

	lower := strings.ToLower(c.Title + " " + c.Description)
	for i := range m.stations {
		if strings.Contains(lower, strings.ToLower(m.stations[i].ID)) ||
			strings.Contains(lower, strings.ToLower(m.stations[i].Location)) {
			st := m.stations[i]
			return &st, true
		}
	}

	st := m.stations[0]
	return &st, true
}

// FindPayment returns the most recent payment record for the complaint's
// customer.
func (m *Memory) FindPayment(c *models.Complaint) (*models.PaymentRecord, bool) {
	var latest *models.PaymentRecord
	for i := range m.payments {
		if m.payments[i].CustomerID != c.CustomerID {
			continue
		}
		if latest == nil || m.payments[i].TransactionDate.After(latest.TransactionDate) {
			latest = &m.payments[i]
		}
	}
	if latest == nil {
		return nil, false
	}
	rec := *latest
	return &rec, true
}
