package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription plans.
const (
	PlanBasic      = "basic"
	PlanStandard   = "standard"
	PlanEnterprise = "enterprise"
)

// AmountUnset is the sentinel for monetary fields that have not been priced
// yet; fields default to it rather than being left undefined.
const AmountUnset = -1

// Subscription represents a customer's service plan.
type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   string             `bson:"customer_id" json:"customer_id"`
	Plan         string             `bson:"plan" json:"plan"`
	VehicleLimit int                `bson:"vehicle_limit" json:"vehicle_limit"`
	MonthlyCents int64              `bson:"monthly_cents" json:"monthly_cents"`
	Active       bool               `bson:"active" json:"active"`
	StartedAt    time.Time          `bson:"started_at" json:"started_at"`
	RenewsAt     *time.Time         `bson:"renews_at,omitempty" json:"renews_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// BillingRecord represents one charge against a subscription. Payment
// processing itself is out of scope; only the record shape is owned here.
type BillingRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID     string             `bson:"customer_id" json:"customer_id"`
	SubscriptionID string             `bson:"subscription_id,omitempty" json:"subscription_id,omitempty"`
	Description    string             `bson:"description" json:"description"`
	AmountCents    int64              `bson:"amount_cents" json:"amount_cents"`
	Currency       string             `bson:"currency" json:"currency"`
	PeriodStart    time.Time          `bson:"period_start" json:"period_start"`
	PeriodEnd      time.Time          `bson:"period_end" json:"period_end"`
	Status         string             `bson:"status" json:"status"` // "pending", "paid", "failed"
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
