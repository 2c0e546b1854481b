// Package assets keeps the fixed-asset register and derives its ledger
// effects: periodic depreciation, disposal and revaluation.
package assets

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// AssetType classifies an asset.
type AssetType string

const (
	TypeBuilding   AssetType = "building"
	TypeVehicle    AssetType = "vehicle"
	TypeEquipment  AssetType = "equipment"
	TypeFurniture  AssetType = "furniture"
	TypeComputer   AssetType = "computer"
	TypeLand       AssetType = "land"
	TypeIntangible AssetType = "intangible"
	TypeOther      AssetType = "other"
)

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	StatusActive           AssetStatus = "active"
	StatusDisposed         AssetStatus = "disposed"
	StatusUnderMaintenance AssetStatus = "under_maintenance"
	StatusRetired          AssetStatus = "retired"
)

// Method selects the depreciation formula.
type Method string

const (
	MethodStraightLine      Method = "straight_line"
	MethodDecliningBalance  Method = "declining_balance"
	MethodUnitsOfProduction Method = "units_of_production"
)

// DepreciationStatus tracks a period row.
type DepreciationStatus string

const (
	DepreciationPending DepreciationStatus = "pending"
	DepreciationPosted  DepreciationStatus = "posted"
)

// DisposalMethod records how an asset left the register.
type DisposalMethod string

const (
	DisposalSale     DisposalMethod = "sale"
	DisposalScrap    DisposalMethod = "scrap"
	DisposalDonation DisposalMethod = "donation"
	DisposalTradeIn  DisposalMethod = "trade_in"
	DisposalWriteOff DisposalMethod = "write_off"
)

// DocumentStatus is shared by disposals and revaluations.
type DocumentStatus string

const (
	DocumentDraft    DocumentStatus = "draft"
	DocumentApproved DocumentStatus = "approved"
	DocumentPosted   DocumentStatus = "posted"
)

// RevaluationType is the direction of a revaluation.
type RevaluationType string

const (
	RevaluationUpward   RevaluationType = "upward"
	RevaluationDownward RevaluationType = "downward"
)

// Source modules of generated journal entries.
const (
	SourceDepreciation = "assets.depreciation"
	SourceDisposal     = "assets.disposal"
	SourceRevaluation  = "assets.revaluation"
)

var (
	ErrAssetNotFound        = fmt.Errorf("%w: asset", shared.ErrNotFound)
	ErrDepreciationNotFound = fmt.Errorf("%w: depreciation", shared.ErrNotFound)
	ErrDisposalNotFound     = fmt.Errorf("%w: asset disposal", shared.ErrNotFound)
	ErrRevaluationNotFound  = fmt.Errorf("%w: asset revaluation", shared.ErrNotFound)

	ErrAssetInactive         = fmt.Errorf("%w: asset is not active", shared.ErrValidation)
	ErrBelowSalvage          = fmt.Errorf("%w: net book value would drop below salvage value", shared.ErrValidation)
	ErrNothingToDepreciate   = fmt.Errorf("%w: no depreciation due for the period", shared.ErrValidation)
	ErrNoRevaluationChange   = fmt.Errorf("%w: new value equals the current value", shared.ErrValidation)
	ErrDuplicateCode         = fmt.Errorf("%w: asset code already exists", shared.ErrConflict)
	ErrDuplicateDepreciation = fmt.Errorf("%w: depreciation already recorded for the period", shared.ErrConflict)
	ErrDepreciationPosted    = fmt.Errorf("%w: depreciation already posted", shared.ErrConflict)
	ErrDisposalPosted        = fmt.Errorf("%w: disposal already posted", shared.ErrConflict)
	ErrDisposalNotDraft      = fmt.Errorf("%w: only draft disposals can be approved", shared.ErrConflict)
	ErrRevaluationPosted     = fmt.Errorf("%w: revaluation already posted", shared.ErrConflict)
)

// Asset is a register entry. While active, NetBookValue stays at or above
// SalvageValue.
type Asset struct {
	ID                      uuid.UUID
	OrganizationID          uuid.UUID
	Code                    string
	Name                    string
	Type                    AssetType
	PurchaseDate            time.Time
	PurchasePrice           decimal.Decimal
	CurrentValue            decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	NetBookValue            decimal.Decimal
	Method                  Method
	UsefulLifeYears         int
	SalvageValue            decimal.Decimal
	Status                  AssetStatus
	AccountID               uuid.UUID
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// UsefulLifeMonths is the depreciation horizon in periods.
func (a Asset) UsefulLifeMonths() int {
	return a.UsefulLifeYears * 12
}

// Depreciation is the persisted charge of one period.
type Depreciation struct {
	ID                      uuid.UUID
	OrganizationID          uuid.UUID
	AssetID                 uuid.UUID
	Period                  string
	Amount                  decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	NetBookValue            decimal.Decimal
	Status                  DepreciationStatus
	JournalEntryID          uuid.UUID
	PostedAt                *time.Time
	CreatedAt               time.Time
}

// ScheduleRow is one computed period of a schedule.
type ScheduleRow struct {
	Period                  string
	PeriodStart             time.Time
	PeriodEnd               time.Time
	Amount                  decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	NetBookValue            decimal.Decimal
}

// Disposal removes an asset from the register.
type Disposal struct {
	ID                      uuid.UUID
	OrganizationID          uuid.UUID
	AssetID                 uuid.UUID
	AssetCode               string
	AssetName               string
	DisposalDate            time.Time
	Method                  DisposalMethod
	DisposalAmount          decimal.Decimal
	PurchasePrice           decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	NetBookValue            decimal.Decimal
	// GainLoss is positive for a gain.
	GainLoss       decimal.Decimal
	AccountID      uuid.UUID
	Status         DocumentStatus
	JournalEntryID uuid.UUID
	Notes          string
	CreatedAt      time.Time
	PostedAt       *time.Time
}

// Revaluation restates an asset at a new value.
type Revaluation struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	AssetID           uuid.UUID
	AssetCode         string
	AssetName         string
	RevaluationDate   time.Time
	PreviousValue     decimal.Decimal
	NewValue          decimal.Decimal
	RevaluationAmount decimal.Decimal
	Type              RevaluationType
	// AccountID overrides the revaluation reserve lookup when set.
	AccountID uuid.UUID
	// ReserveAmount and LossAmount split a posted downward revaluation.
	ReserveAmount  decimal.Decimal
	LossAmount     decimal.Decimal
	Status         DocumentStatus
	JournalEntryID uuid.UUID
	Reason         string
	CreatedAt      time.Time
	PostedAt       *time.Time
}

// CreateAssetInput registers a new asset.
type CreateAssetInput struct {
	OrganizationID  uuid.UUID
	Code            string
	Name            string
	Type            AssetType
	PurchaseDate    time.Time
	PurchasePrice   decimal.Decimal
	Method          Method
	UsefulLifeYears int
	SalvageValue    decimal.Decimal
	AccountID       uuid.UUID
}

// Validate checks the register rules for a new asset.
func (in CreateAssetInput) Validate() error {
	switch {
	case in.OrganizationID == uuid.Nil:
		return fmt.Errorf("%w: organization required", shared.ErrValidation)
	case in.Code == "" || in.Name == "":
		return fmt.Errorf("%w: asset code and name required", shared.ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown asset type %q", shared.ErrValidation, in.Type)
	case !in.Method.Valid():
		return fmt.Errorf("%w: unknown depreciation method %q", shared.ErrValidation, in.Method)
	case in.PurchaseDate.IsZero():
		return fmt.Errorf("%w: purchase date required", shared.ErrValidation)
	case !in.PurchasePrice.IsPositive():
		return fmt.Errorf("%w: purchase price must be positive", shared.ErrValidation)
	case in.SalvageValue.IsNegative() || !in.SalvageValue.LessThan(in.PurchasePrice):
		return fmt.Errorf("%w: salvage value must be between zero and the purchase price", shared.ErrValidation)
	case in.UsefulLifeYears <= 0:
		return fmt.Errorf("%w: useful life must be positive", shared.ErrValidation)
	case in.AccountID == uuid.Nil:
		return fmt.Errorf("%w: asset account required", shared.ErrValidation)
	case !shared.FitsScale(in.PurchasePrice, shared.MoneyPlaces) || !shared.FitsScale(in.SalvageValue, shared.MoneyPlaces):
		return fmt.Errorf("%w: amounts allow two decimal places", shared.ErrValidation)
	}
	return nil
}

// CreateDisposalInput records a disposal.
type CreateDisposalInput struct {
	AssetID        uuid.UUID
	DisposalDate   time.Time
	Method         DisposalMethod
	DisposalAmount decimal.Decimal
	AccountID      uuid.UUID
	Notes          string
	Actor          string
}

// Validate checks the disposal request.
func (in CreateDisposalInput) Validate() error {
	switch {
	case in.AssetID == uuid.Nil:
		return fmt.Errorf("%w: asset required", shared.ErrValidation)
	case in.DisposalDate.IsZero():
		return fmt.Errorf("%w: disposal date required", shared.ErrValidation)
	case !in.Method.Valid():
		return fmt.Errorf("%w: unknown disposal method %q", shared.ErrValidation, in.Method)
	case in.DisposalAmount.IsNegative() || !shared.FitsScale(in.DisposalAmount, shared.MoneyPlaces):
		return fmt.Errorf("%w: disposal amount must be a non-negative money amount", shared.ErrValidation)
	case in.AccountID == uuid.Nil:
		return fmt.Errorf("%w: disposal account required", shared.ErrValidation)
	}
	return nil
}

// CreateRevaluationInput records a revaluation.
type CreateRevaluationInput struct {
	AssetID         uuid.UUID
	RevaluationDate time.Time
	NewValue        decimal.Decimal
	AccountID       uuid.UUID
	Reason          string
	Actor           string
}

// Validate checks the revaluation request.
func (in CreateRevaluationInput) Validate() error {
	switch {
	case in.AssetID == uuid.Nil:
		return fmt.Errorf("%w: asset required", shared.ErrValidation)
	case in.RevaluationDate.IsZero():
		return fmt.Errorf("%w: revaluation date required", shared.ErrValidation)
	case in.NewValue.IsNegative() || !shared.FitsScale(in.NewValue, shared.MoneyPlaces):
		return fmt.Errorf("%w: new value must be a non-negative money amount", shared.ErrValidation)
	}
	return nil
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case TypeBuilding, TypeVehicle, TypeEquipment, TypeFurniture, TypeComputer, TypeLand, TypeIntangible, TypeOther:
		return true
	}
	return false
}

// Valid reports whether m is a known depreciation method.
func (m Method) Valid() bool {
	switch m {
	case MethodStraightLine, MethodDecliningBalance, MethodUnitsOfProduction:
		return true
	}
	return false
}

// Valid reports whether m is a known disposal method.
func (m DisposalMethod) Valid() bool {
	switch m {
	case DisposalSale, DisposalScrap, DisposalDonation, DisposalTradeIn, DisposalWriteOff:
		return true
	}
	return false
}
