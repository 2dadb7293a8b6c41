package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// 预约相关的业务错误
var (
	ErrSlotNotFound          = errors.New("slot not found")
	ErrSlotFull              = errors.New("slot is full")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled")
)

// InterfaceBookingService 定义权益预约服务接口
type InterfaceBookingService interface {
	CreateSlot(slot *models.BenefitSlot) error
	GetSlots(branchID uint, benefitType string, date *time.Time) ([]models.BenefitSlot, error)
	GetSlotByID(id uint) (*models.BenefitSlot, error)
	BookSlot(slotID, memberID, membershipID uint, recordedBy, notes string) (*models.BenefitBooking, error)
	CancelBooking(bookingID uint, reason string) (*models.BenefitBooking, error)
	GetBookingByID(id uint) (*models.BenefitBooking, error)
	GetMemberBookings(memberID uint) ([]models.BenefitBooking, error)
	CompleteBooking(bookingID uint) error
}

// BookingService 提供权益时段预约服务
type BookingService struct {
	DB             *gorm.DB
	Config         *config.Config
	BenefitService InterfaceBenefitService
	EventPublisher InterfaceEventPublisher
}

// NewBookingService 创建一个新的预约服务
func NewBookingService(db *gorm.DB, cfg *config.Config, benefitService InterfaceBenefitService, publisher InterfaceEventPublisher) InterfaceBookingService {
	return &BookingService{
		DB:             db,
		Config:         cfg,
		BenefitService: benefitService,
		EventPublisher: publisher,
	}
}

// 1 CreateSlot 创建可预约时段
func (s *BookingService) CreateSlot(slot *models.BenefitSlot) error {
	if slot.Capacity < 1 {
		return errors.New("时段容量必须大于0")
	}
	slot.BookedCount = 0
	return s.DB.Create(slot).Error
}

// 2 GetSlots 按分店/权益类型/日期查询时段
func (s *BookingService) GetSlots(branchID uint, benefitType string, date *time.Time) ([]models.BenefitSlot, error) {
	var slots []models.BenefitSlot
	query := s.DB.Where("branch_id = ?", branchID)
	if benefitType != "" {
		query = query.Where("benefit_type = ?", benefitType)
	}
	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		query = query.Where("slot_date >= ? AND slot_date < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}
	if err := query.Order("slot_date, start_time").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// 3 GetSlotByID 根据ID获取时段
func (s *BookingService) GetSlotByID(id uint) (*models.BenefitSlot, error) {
	var slot models.BenefitSlot
	if err := s.DB.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// 4 BookSlot 预约时段。
// 全程在一个事务内：先对时段做条件更新抢占名额
// (UPDATE ... SET booked_count = booked_count + 1 WHERE booked_count < capacity)，
// 影响行数为0即已约满；再在同一事务内扣减权益额度，额度不足整体回滚。
func (s *BookingService) BookSlot(slotID, memberID, membershipID uint, recordedBy, notes string) (*models.BenefitBooking, error) {
	var booking *models.BenefitBooking

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.BenefitSlot
		if err := tx.First(&slot, slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		// 条件更新抢占名额，并发下不会超卖
		result := tx.Model(&models.BenefitSlot{}).
			Where("id = ? AND booked_count < capacity", slotID).
			UpdateColumn("booked_count", gorm.Expr("booked_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlotFull
		}

		booking = &models.BenefitBooking{
			MemberID:     memberID,
			MembershipID: membershipID,
			SlotID:       slotID,
			Status:       models.BookingStatusBooked,
			BookedAt:     time.Now(),
			Notes:        notes,
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		// 预约即消耗权益额度，额度不足回滚整个预约
		if _, err := s.BenefitService.RecordUsageTx(tx, membershipID, slot.BenefitType, 1, recordedBy, "slot booking", &booking.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.EventPublisher != nil {
		s.EventPublisher.PublishBookingConfirmed(booking)
	}
	return booking, nil
}

// 5 CancelBooking 取消预约。
// 时段booked_count条件递减（不会减到0以下）。已消耗的权益额度默认不归还；
// 仅当配置了BOOKING_CANCEL_RESTORES_BALANCE时，同事务内删除关联的使用记录。
func (s *BookingService) CancelBooking(bookingID uint, reason string) (*models.BenefitBooking, error) {
	var booking models.BenefitBooking

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.Status != models.BookingStatusBooked && booking.Status != models.BookingStatusConfirmed {
			return ErrBookingNotCancellable
		}

		now := time.Now()
		booking.Status = models.BookingStatusCancelled
		booking.CancelledAt = &now
		booking.CancelReason = reason
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		// 条件递减，booked_count不会为负
		if err := tx.Model(&models.BenefitSlot{}).
			Where("id = ? AND booked_count > 0", booking.SlotID).
			UpdateColumn("booked_count", gorm.Expr("booked_count - 1")).Error; err != nil {
			return err
		}

		if s.Config.BookingCancelRestoresBalance {
			if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.BenefitUsageRecord{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// 6 GetBookingByID 根据ID获取预约
func (s *BookingService) GetBookingByID(id uint) (*models.BenefitBooking, error) {
	var booking models.BenefitBooking
	if err := s.DB.Preload("Slot").Preload("Member").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// 7 GetMemberBookings 查询会员的全部预约
func (s *BookingService) GetMemberBookings(memberID uint) ([]models.BenefitBooking, error) {
	var bookings []models.BenefitBooking
	if err := s.DB.Preload("Slot").Where("member_id = ?", memberID).Order("booked_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// 8 CompleteBooking 将预约标记为已完成（到场核销）
func (s *BookingService) CompleteBooking(bookingID uint) error {
	result := s.DB.Model(&models.BenefitBooking{}).
		Where("id = ? AND status IN ?", bookingID, []models.BookingStatus{models.BookingStatusBooked, models.BookingStatusConfirmed}).
		Update("status", models.BookingStatusCompleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
