package refdata

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/swapdesk/swapdesk/pkg/models"
)

// Seed is the YAML-loadable shape of the reference catalogs.
type Seed struct {
	Customers []models.Customer          `yaml:"customers"`
	Solutions []models.TechnicalSolution `yaml:"solutions"`
	Issues    []models.KnownIssue        `yaml:"issues"`
	Stations  []models.StationRecord     `yaml:"stations"`
	Payments  []models.PaymentRecord     `yaml:"payments"`
}

// LoadSeed reads seed data from a YAML file, falling back to the built-in
// defaults when path is empty. Missing sections are filled from the defaults
// so a partial seed file still yields a working catalog set.
func LoadSeed(path string) (Seed, error) {
	seed := DefaultSeed()
	if path == "" {
		return seed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read seed file: %w", err)
	}

	var loaded Seed
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return seed, fmt.Errorf("parse seed file: %w", err)
	}

	if len(loaded.Customers) > 0 {
		seed.Customers = loaded.Customers
	}
	if len(loaded.Solutions) > 0 {
		seed.Solutions = loaded.Solutions
	}
	if len(loaded.Issues) > 0 {
		seed.Issues = loaded.Issues
	}
	if len(loaded.Stations) > 0 {
		seed.Stations = loaded.Stations
	}
	if len(loaded.Payments) > 0 {
		seed.Payments = loaded.Payments
	}

	log.Info().
		Str("path", path).
		Int("customers", len(seed.Customers)).
		Int("solutions", len(seed.Solutions)).
		Int("issues", len(seed.Issues)).
		Int("stations", len(seed.Stations)).
		Msg("Reference catalogs loaded from seed file")

	return seed, nil
}

// DefaultSeed returns the built-in reference data so the service works with
// zero configuration.
func DefaultSeed() Seed {
	now := time.Now().UTC()
	return Seed{
		Customers: []models.Customer{
			{ID: "CUST001", Email: "maya.torres@example.com", Name: "Maya Torres", SubscriptionType: "premium", TotalSwaps: 412, LastActivity: now.Add(-6 * time.Hour)},
			{ID: "CUST002", Email: "liam.okafor@example.com", Name: "Liam Okafor", SubscriptionType: "basic", TotalSwaps: 57, LastActivity: now.Add(-48 * time.Hour)},
			{ID: "CUST003", Email: "sofia.lindgren@example.com", Name: "Sofia Lindgren", SubscriptionType: "enterprise", TotalSwaps: 1280, LastActivity: now.Add(-30 * time.Minute)},
		},
		Solutions: []models.TechnicalSolution{
			{ID: "SOL001", ProblemType: "app_pairing", Keywords: []string{"pairing", "pair", "bluetooth", "connect"}, Solution: "Reinstall the app and re-pair the vehicle from the garage screen", SuccessRate: 0.92},
			{ID: "SOL002", ProblemType: "display_error", Keywords: []string{"error code", "display", "e-23"}, Solution: "Power-cycle the vehicle by holding the ignition for 10 seconds", SuccessRate: 0.87},
			{ID: "SOL003", ProblemType: "range_drop", Keywords: []string{"range", "drains"}, Solution: "Calibrate the battery gauge via a full swap cycle", SuccessRate: 0.65},
		},
		Issues: []models.KnownIssue{
			{ID: "ISS001", Type: "Controller fault", Symptoms: []string{"won't start", "not turning on", "dead display"}, Solution: "Replace the motor controller fuse", Severity: "high", EstimatedRepairTime: 45},
			{ID: "ISS002", Type: "Battery latch wear", Symptoms: []string{"battery loose", "rattling", "latch"}, Solution: "Swap the latch assembly and recalibrate", Severity: "medium", EstimatedRepairTime: 30},
			{ID: "ISS003", Type: "Throttle drift", Symptoms: []string{"accelerates on its own", "throttle sticks"}, Solution: "Recalibrate throttle sensor", Severity: "high", EstimatedRepairTime: 60},
		},
		Stations: []models.StationRecord{
			{ID: "ST001", Location: "Riverside Ave 12", Status: "operational", BatterySlots: 16, AvailableBatteries: 9, LastMaintenance: now.AddDate(0, 0, -12), CommonIssues: []string{"door jam", "screen freeze"}},
			{ID: "ST002", Location: "Harbor Market", Status: "maintenance", BatterySlots: 8, AvailableBatteries: 2, LastMaintenance: now.AddDate(0, 0, -2), CommonIssues: []string{"card reader"}},
			{ID: "ST003", Location: "North Terminal", Status: "operational", BatterySlots: 24, AvailableBatteries: 20, LastMaintenance: now.AddDate(0, -1, 0), CommonIssues: nil},
		},
		Payments: []models.PaymentRecord{
			{ID: "PAY001", CustomerID: "CUST001", Amount: 12.50, Status: models.PaymentCompleted, TransactionDate: now.Add(-24 * time.Hour), PaymentMethod: "visa •• 4242"},
			{ID: "PAY002", CustomerID: "CUST002", Amount: 4.90, Status: models.PaymentFailed, TransactionDate: now.Add(-72 * time.Hour), PaymentMethod: "mastercard •• 1881"},
			{ID: "PAY003", CustomerID: "CUST003", Amount: 89.00, Status: models.PaymentCompleted, TransactionDate: now.Add(-2 * time.Hour), PaymentMethod: "invoice"},
		},
	}
}
