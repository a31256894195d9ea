package models

import (
	"fmt"
	"time"
)

// ReportStatus is the lifecycle state of a breakdown report.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusAssigned ReportStatus = "assigned"
	StatusResolved ReportStatus = "resolved"
)

// Urgency of a catalogued breakdown issue.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// BreakdownIssue is an entry of the fixed issue catalogue.
type BreakdownIssue struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description"`
	Urgency     Urgency `bson:"urgency" json:"urgency"`
}

// BreakdownIssues is the catalogue offered when reporting a breakdown.
var BreakdownIssues = []BreakdownIssue{
	{ID: "issue-1", Name: "Flat Tire", Description: "Vehicle has a flat or punctured tire", Urgency: UrgencyMedium},
	{ID: "issue-2", Name: "Engine Failure", Description: "Engine has stopped working or won't start", Urgency: UrgencyHigh},
	{ID: "issue-3", Name: "Battery Dead", Description: "Battery is dead and vehicle won't start", Urgency: UrgencyMedium},
	{ID: "issue-4", Name: "Brake Issues", Description: "Problems with the braking system", Urgency: UrgencyHigh},
	{ID: "issue-5", Name: "Overheating", Description: "Engine is overheating", Urgency: UrgencyHigh},
	{ID: "issue-6", Name: "Fuel Issues", Description: "Out of fuel or fuel system problems", Urgency: UrgencyMedium},
	{ID: "issue-7", Name: "Electrical Issues", Description: "Problems with the vehicle's electrical system", Urgency: UrgencyMedium},
	{ID: "issue-8", Name: "Transmission Problems", Description: "Issues with the vehicle's transmission", Urgency: UrgencyHigh},
	{ID: "issue-9", Name: "Lights Not Working", Description: "Headlights, taillights, or indicators not working", Urgency: UrgencyLow},
	{ID: "issue-10", Name: "Other", Description: "Other issues not listed", Urgency: UrgencyMedium},
}

// FindIssue looks up a catalogued issue by id.
func FindIssue(id string) (BreakdownIssue, bool) {
	for _, issue := range BreakdownIssues {
		if issue.ID == id {
			return issue, true
		}
	}
	return BreakdownIssue{}, false
}

// BreakdownReport represents a reported vehicle breakdown.
type BreakdownReport struct {
	ID               string       `bson:"_id" json:"id"`
	UserID           string       `bson:"user_id" json:"userId"`
	VehicleType      VehicleType  `bson:"vehicle_type" json:"vehicleType"`
	IssueID          string       `bson:"issue_id" json:"issueId"`
	Description      string       `bson:"description,omitempty" json:"description,omitempty"`
	Location         Location     `bson:"location" json:"location"`
	CreatedAt        time.Time    `bson:"created_at" json:"createdAt"`
	Status           ReportStatus `bson:"status" json:"status"`
	AssignedGarageID string       `bson:"assigned_garage_id,omitempty" json:"assignedGarageId,omitempty"`
}

// EntityID returns the report id.
func (r BreakdownReport) EntityID() string { return r.ID }

// BreakdownInput is what a user submits when reporting a breakdown.
type BreakdownInput struct {
	UserID      string      `json:"userId" validate:"required"`
	VehicleType VehicleType `json:"vehicleType" validate:"required,oneof=car truck bike bus other"`
	IssueID     string      `json:"issueId" validate:"required"`
	Description string      `json:"description"`
	Location    *Location   `json:"location" validate:"required"`
}

// reportTransitions lists the only forward moves a report may make.
var reportTransitions = map[ReportStatus]ReportStatus{
	StatusPending:  StatusAssigned,
	StatusAssigned: StatusResolved,
}

// CanTransition checks if a report may move from one status to another.
func CanTransition(from, to ReportStatus) error {
	if next, ok := reportTransitions[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("invalid transition: %s -> %s", from, to)
}

// Advance moves the report to the next status. Assigning requires a garage id.
func (r *BreakdownReport) Advance(to ReportStatus, garageID string) error {
	if err := CanTransition(r.Status, to); err != nil {
		return err
	}
	if to == StatusAssigned {
		if garageID == "" {
			return fmt.Errorf("assigning a report requires a garage id")
		}
		r.AssignedGarageID = garageID
	}
	r.Status = to
	return nil
}
