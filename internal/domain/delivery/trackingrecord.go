// Package delivery holds the per-occurrence tracking records that the admin,
// seller and driver views reconcile against the nominal schedule. Records are
// created lazily the first time any read path observes an occurrence, mutated
// by status updates, and never deleted.
package delivery

import (
	"fmt"
	"time"

	vo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	subvo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// Checkpoint is one entry of the append-only checkpoint log.
type Checkpoint struct {
	Status vo.DeliveryStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
	Actor  string            `json:"actor,omitempty"`
	At     time.Time         `json:"at"`
}

// TrackingRecord is one (subscription, date, shift) delivery under way. The
// (SubscriptionID, Date, Shift) triple is unique; materialization relies on
// that key for idempotency under concurrent readers.
type TrackingRecord struct {
	id             uint
	uuid           string
	deliveryNumber string
	subscriptionID uint
	date           biztime.CivilDate
	shift          subvo.Shift
	status         vo.DeliveryStatus
	driverSID      *string
	eta            time.Time
	checkpoints    []Checkpoint
	deliveredAt    *time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewTrackingRecord materializes a record for an observed occurrence: status
// pending, a single created checkpoint, and the caller-computed ETA.
func NewTrackingRecord(subscriptionID uint, date biztime.CivilDate, shift subvo.Shift, uuid, deliveryNumber string, eta time.Time) (*TrackingRecord, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("delivery date is required")
	}
	if !shift.Valid() {
		return nil, fmt.Errorf("unknown shift: %q", shift)
	}
	if deliveryNumber == "" {
		return nil, fmt.Errorf("delivery number is required")
	}

	now := biztime.NowUTC()
	return &TrackingRecord{
		uuid:           uuid,
		deliveryNumber: deliveryNumber,
		subscriptionID: subscriptionID,
		date:           date,
		shift:          shift,
		status:         vo.StatusPending,
		eta:            eta,
		checkpoints: []Checkpoint{{
			Status: vo.StatusPending,
			Note:   "created",
			At:     now,
		}},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTrackingRecordParams rebuilds a record from persistence.
type ReconstructTrackingRecordParams struct {
	ID             uint
	UUID           string
	DeliveryNumber string
	SubscriptionID uint
	Date           biztime.CivilDate
	Shift          subvo.Shift
	Status         vo.DeliveryStatus
	DriverSID      *string
	ETA            time.Time
	Checkpoints    []Checkpoint
	DeliveredAt    *time.Time
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructTrackingRecord reconstructs a record from persistence.
func ReconstructTrackingRecord(p ReconstructTrackingRecordParams) (*TrackingRecord, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("tracking record ID cannot be zero")
	}
	if !vo.ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid delivery status: %s", p.Status)
	}
	return &TrackingRecord{
		id:             p.ID,
		uuid:           p.UUID,
		deliveryNumber: p.DeliveryNumber,
		subscriptionID: p.SubscriptionID,
		date:           p.Date,
		shift:          p.Shift,
		status:         p.Status,
		driverSID:      p.DriverSID,
		eta:            p.ETA,
		checkpoints:    p.Checkpoints,
		deliveredAt:    p.DeliveredAt,
		version:        p.Version,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

func (t *TrackingRecord) ID() uint                  { return t.id }
func (t *TrackingRecord) UUID() string              { return t.uuid }
func (t *TrackingRecord) DeliveryNumber() string    { return t.deliveryNumber }
func (t *TrackingRecord) SubscriptionID() uint      { return t.subscriptionID }
func (t *TrackingRecord) Date() biztime.CivilDate   { return t.date }
func (t *TrackingRecord) Shift() subvo.Shift        { return t.shift }
func (t *TrackingRecord) Status() vo.DeliveryStatus { return t.status }
func (t *TrackingRecord) DriverSID() *string        { return t.driverSID }
func (t *TrackingRecord) ETA() time.Time            { return t.eta }
func (t *TrackingRecord) Checkpoints() []Checkpoint { return t.checkpoints }
func (t *TrackingRecord) DeliveredAt() *time.Time   { return t.deliveredAt }
func (t *TrackingRecord) Version() int              { return t.version }
func (t *TrackingRecord) CreatedAt() time.Time      { return t.createdAt }
func (t *TrackingRecord) UpdatedAt() time.Time      { return t.updatedAt }

// SetID sets the record ID (only for persistence layer use)
func (t *TrackingRecord) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("tracking record ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("tracking record ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *TrackingRecord) appendCheckpoint(status vo.DeliveryStatus, actor, note string, at time.Time) {
	t.checkpoints = append(t.checkpoints, Checkpoint{
		Status: status,
		Note:   note,
		Actor:  actor,
		At:     at,
	})
}

// AssignDriver assigns a driver and moves the record to assigned.
func (t *TrackingRecord) AssignDriver(driverSID, actor string) error {
	if driverSID == "" {
		return ErrDriverRequired
	}
	if err := t.MarkStatus(vo.StatusAssigned, actor, "driver "+driverSID+" assigned"); err != nil {
		return err
	}
	t.driverSID = &driverSID
	return nil
}

// MarkStatus transitions the record and appends a checkpoint. Repeating the
// current status is a no-op. delivered stamps deliveredAt.
func (t *TrackingRecord) MarkStatus(target vo.DeliveryStatus, actor, note string) error {
	if !vo.ValidStatuses[target] {
		return fmt.Errorf("invalid delivery status: %s", target)
	}
	if t.status == target {
		return nil
	}
	if !t.status.CanTransitionTo(target) {
		return ErrInvalidTransition(t.status.String(), target.String())
	}

	now := biztime.NowUTC()
	t.status = target
	if target == vo.StatusDelivered {
		t.deliveredAt = &now
	}
	t.appendCheckpoint(target, actor, note, now)
	t.updatedAt = now
	t.version++
	return nil
}
