// Package metrics computes aggregate complaint statistics for the metrics
// endpoint. Aggregation runs over the store on demand; nothing is cached.
package metrics

import (
	"context"
	"time"

	"github.com/swapdesk/swapdesk/internal/store"
	"github.com/swapdesk/swapdesk/pkg/models"
)

// maxAggregationWindow bounds how many complaints one aggregation scans.
const maxAggregationWindow = 10000

// Compute aggregates complaint metrics from the store.
func Compute(ctx context.Context, st store.ComplaintStore) (*models.ComplaintMetrics, error) {
	complaints, err := st.ListComplaints(ctx, store.ComplaintFilter{Limit: maxAggregationWindow})
	if err != nil {
		return nil, err
	}
	return Aggregate(complaints), nil
}

// Aggregate computes metrics over an in-memory complaint slice.
func Aggregate(complaints []models.Complaint) *models.ComplaintMetrics {
	m := &models.ComplaintMetrics{
		TotalComplaints:    len(complaints),
		ComplaintsByType:   make(map[models.ComplaintType]int),
		ComplaintsByStatus: make(map[models.ComplaintStatus]int),
		AgentPerformance:   make(map[models.AgentRole]models.RolePerformance),
	}

	var totalResolution time.Duration
	for i := range complaints {
		c := &complaints[i]
		m.ComplaintsByType[c.Type]++
		m.ComplaintsByStatus[c.Status]++

		if c.AssignedAgentRole != "" {
			perf := m.AgentPerformance[c.AssignedAgentRole]
			perf.Assigned++
			if c.Status == models.StatusResolved {
				perf.Resolved++
			}
			m.AgentPerformance[c.AssignedAgentRole] = perf
		}

		if c.Status == models.StatusResolved {
			m.ResolvedComplaints++
			if c.ResolvedAt != nil {
				totalResolution += c.ResolvedAt.Sub(c.CreatedAt)
			}
		}
	}

	if m.TotalComplaints > 0 {
		m.ResolutionRate = float64(m.ResolvedComplaints) / float64(m.TotalComplaints)
	}
	if m.ResolvedComplaints > 0 {
		m.AverageResolutionTime = totalResolution / time.Duration(m.ResolvedComplaints)
	}
	return m
}
