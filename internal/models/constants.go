package models

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

const (
	// PaymentStatusNone is set at creation, before the booking is confirmed.
	// A booking read back with an empty payment status is a corrupt record,
	// not an unpaid one.
	PaymentStatusNone    = "none"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const (
	RoomStatusAvailable = "available"
	RoomStatusOccupied  = "occupied"
	RoomStatusCleaning  = "cleaning"
)

const (
	RoomCategoryEconomy    = "economy"
	RoomCategoryBusiness   = "business"
	RoomCategoryFirstClass = "first-class"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeAmount     = "amount"
)

const (
	RevenueEntryCollected = "collected"
	RevenueEntryUpcoming  = "upcoming"
)

const (
	CostCategoryMaintenance = "maintenance"
	CostCategoryUtilities   = "utilities"
	CostCategorySupplies    = "supplies"
	CostCategoryStaff       = "staff"
	CostCategoryMarketing   = "marketing"
	CostCategoryOther       = "other"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

const (
	// Cleaning buffer between checkout and the room becoming bookable again.
	MinBufferHours     = 1
	MaxBufferHours     = 5
	DefaultBufferHours = 3
)

const (
	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 1000

	// DefaultSweepIntervalSeconds интервал сверки статусов комнат
	DefaultSweepIntervalSeconds = 60

	// DefaultSettingsTTL время жизни настроек в Redis
	DefaultSettingsTTL = 24 * 60 * 60 // 24 часа в секундах
)

// ValidRoomCategory reports whether the category is one of the known tiers.
func ValidRoomCategory(category string) bool {
	switch category {
	case RoomCategoryEconomy, RoomCategoryBusiness, RoomCategoryFirstClass:
		return true
	}
	return false
}

// ValidCostCategory reports whether the category is a known cost bucket.
func ValidCostCategory(category string) bool {
	switch category {
	case CostCategoryMaintenance, CostCategoryUtilities, CostCategorySupplies,
		CostCategoryStaff, CostCategoryMarketing, CostCategoryOther:
		return true
	}
	return false
}

// ValidPeriod reports whether the period name is supported by revenue reports.
func ValidPeriod(period string) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}
