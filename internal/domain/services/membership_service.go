package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/pkg/logger"
	"gymcore-http-service/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 会籍状态流转错误
var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrPlanInactive        = errors.New("plan is not active")
	ErrMembershipNotFrozen = errors.New("membership is not frozen")
	ErrInvalidTransition   = errors.New("invalid membership status transition")
)

// 临近到期提醒窗口（天）
const expiringSoonDays = 7

// PurchaseResult 购买会籍后返回会籍与账单
type PurchaseResult struct {
	Membership *models.Membership `json:"membership"`
	Invoice    *models.Invoice    `json:"invoice"`
}

// InterfaceMembershipService defines the membership lifecycle service interface
type InterfaceMembershipService interface {
	PurchaseMembership(memberID, planID uint, startDate time.Time) (*PurchaseResult, error)
	RenewMembership(membershipID uint) (*PurchaseResult, error)
	FreezeMembership(membershipID uint, reason string) (*models.Membership, error)
	UnfreezeMembership(membershipID uint) (*models.Membership, error)
	CancelMembership(membershipID uint) (*models.Membership, error)
	GetMembershipByID(id uint) (*models.Membership, error)
	GetMemberMemberships(memberID uint) ([]models.Membership, error)
	ExpireOverdue() (int64, error)
}

// MembershipService 提供会籍生命周期服务
type MembershipService struct {
	DB        *gorm.DB
	Config    *config.Config
	Publisher InterfaceEventPublisher
}

// NewMembershipService 创建一个新的会籍服务
func NewMembershipService(db *gorm.DB, cfg *config.Config, publisher InterfaceEventPublisher) InterfaceMembershipService {
	return &MembershipService{
		DB:        db,
		Config:    cfg,
		Publisher: publisher,
	}
}

// 1 PurchaseMembership 购买会籍。
// 同一事务内创建会籍与待支付账单，会籍即时生效，账单由支付回调核销。
func (s *MembershipService) PurchaseMembership(memberID, planID uint, startDate time.Time) (*PurchaseResult, error) {
	var member models.Member
	if err := s.DB.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var plan models.MembershipPlan
	if err := s.DB.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	if plan.BranchID != member.BranchID {
		return nil, errors.New("套餐与会员不属于同一家分店")
	}

	if startDate.IsZero() {
		startDate = time.Now()
	}

	membership := models.Membership{
		MemberID:       memberID,
		PlanID:         planID,
		BranchID:       member.BranchID,
		StartDate:      startDate,
		EndDate:        startDate.AddDate(0, 0, plan.DurationDays),
		Status:         models.MembershipStatusActive,
		PricePaidPaise: plan.PricePaise,
	}

	var invoice *models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		inv, err := s.createInvoiceTx(tx, &membership, plan.PricePaise, "会籍购买: "+plan.Name)
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("会员 %d 购买套餐 %d，会籍 %d 生效至 %s", memberID, planID, membership.ID, membership.EndDate.Format("2006-01-02"))
	return &PurchaseResult{Membership: &membership, Invoice: invoice}, nil
}

// 2 RenewMembership 续费会籍。
// 未到期续费从原到期日顺延，已过期续费从当天重新起算。
func (s *MembershipService) RenewMembership(membershipID uint) (*PurchaseResult, error) {
	membership, err := s.GetMembershipByID(membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status == models.MembershipStatusCancelled {
		return nil, ErrInvalidTransition
	}

	var plan models.MembershipPlan
	if err := s.DB.First(&plan, membership.PlanID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	start := membership.EndDate
	if start.Before(now) {
		start = now
	}

	renewed := models.Membership{
		MemberID:       membership.MemberID,
		PlanID:         membership.PlanID,
		BranchID:       membership.BranchID,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, plan.DurationDays),
		Status:         models.MembershipStatusActive,
		PricePaidPaise: plan.PricePaise,
	}

	var invoice *models.Invoice
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&renewed).Error; err != nil {
			return err
		}
		inv, err := s.createInvoiceTx(tx, &renewed, plan.PricePaise, "会籍续费: "+plan.Name)
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Membership: &renewed, Invoice: invoice}, nil
}

// createInvoiceTx 在会籍事务内开具待支付账单
func (s *MembershipService) createInvoiceTx(tx *gorm.DB, membership *models.Membership, amountPaise int64, notes string) (*models.Invoice, error) {
	var branch models.Branch
	if err := tx.First(&branch, membership.BranchID).Error; err != nil {
		return nil, err
	}
	invoice := &models.Invoice{
		BranchID:      membership.BranchID,
		MemberID:      membership.MemberID,
		MembershipID:  &membership.ID,
		InvoiceNumber: utils.GenerateInvoiceNumber(branch.Code, time.Now()),
		AmountPaise:   amountPaise,
		Status:        models.InvoiceStatusPending,
		Notes:         notes,
	}
	if err := tx.Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// 3 FreezeMembership 冻结会籍，仅active可冻结
func (s *MembershipService) FreezeMembership(membershipID uint, reason string) (*models.Membership, error) {
	return s.transition(membershipID, func(m *models.Membership) error {
		if m.Status != models.MembershipStatusActive {
			return ErrInvalidTransition
		}
		now := time.Now()
		m.Status = models.MembershipStatusFrozen
		m.FrozenAt = &now
		m.FreezeReason = reason
		return nil
	})
}

// 4 UnfreezeMembership 解冻会籍，到期日按冻结时长顺延
func (s *MembershipService) UnfreezeMembership(membershipID uint) (*models.Membership, error) {
	return s.transition(membershipID, func(m *models.Membership) error {
		if m.Status != models.MembershipStatusFrozen || m.FrozenAt == nil {
			return ErrMembershipNotFrozen
		}
		frozenFor := time.Since(*m.FrozenAt)
		m.EndDate = m.EndDate.Add(frozenFor)
		m.Status = models.MembershipStatusActive
		m.FrozenAt = nil
		m.FreezeReason = ""
		// 到期日顺延后允许重新提醒
		m.ExpiryNotifiedAt = nil
		return nil
	})
}

// 5 CancelMembership 取消会籍，终态不可再流转
func (s *MembershipService) CancelMembership(membershipID uint) (*models.Membership, error) {
	return s.transition(membershipID, func(m *models.Membership) error {
		if m.Status == models.MembershipStatusCancelled {
			return ErrInvalidTransition
		}
		m.Status = models.MembershipStatusCancelled
		return nil
	})
}

// NeedsExpiryReminder 判断会籍是否应投递到期提醒：
// 处于active、落在提醒窗口内，且本到期周期尚未提醒过。
func NeedsExpiryReminder(m *models.Membership, now, deadline time.Time) bool {
	if m.Status != models.MembershipStatusActive {
		return false
	}
	if m.ExpiryNotifiedAt != nil {
		return false
	}
	return !m.EndDate.Before(now) && !m.EndDate.After(deadline)
}

// transition 在行锁内执行一次状态流转
func (s *MembershipService) transition(membershipID uint, mutate func(*models.Membership) error) (*models.Membership, error) {
	var membership models.Membership
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&membership, membershipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if err := mutate(&membership); err != nil {
			return err
		}
		return tx.Save(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// 6 GetMembershipByID 获取会籍详情
func (s *MembershipService) GetMembershipByID(id uint) (*models.Membership, error) {
	var membership models.Membership
	if err := s.DB.Preload("Plan.Benefits").Preload("Member").First(&membership, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// 7 GetMemberMemberships 获取会员的全部会籍
func (s *MembershipService) GetMemberMemberships(memberID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := s.DB.Preload("Plan").Where("member_id = ?", memberID).
		Order("end_date DESC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// 8 ExpireOverdue 到期扫描。
// 将已过期的active/frozen会籍批量置为expired，并对临近到期的会籍投递提醒事件。
func (s *MembershipService) ExpireOverdue() (int64, error) {
	now := time.Now()

	result := s.DB.Model(&models.Membership{}).
		Where("status IN ? AND end_date < ?", []models.MembershipStatus{models.MembershipStatusActive, models.MembershipStatusFrozen}, now).
		Update("status", models.MembershipStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info("到期扫描: %d 条会籍置为过期", result.RowsAffected)
	}

	if s.Publisher != nil {
		// 只对尚未提醒过的会籍投递，避免每个扫描周期重复提醒
		var expiring []models.Membership
		deadline := now.AddDate(0, 0, expiringSoonDays)
		if err := s.DB.Where("status = ? AND end_date BETWEEN ? AND ? AND expiry_notified_at IS NULL",
			models.MembershipStatusActive, now, deadline).
			Find(&expiring).Error; err != nil {
			logger.Warning("到期扫描: 查询临近到期会籍失败: %v", err)
		} else {
			notified := make([]uint, 0, len(expiring))
			for i := range expiring {
				if !NeedsExpiryReminder(&expiring[i], now, deadline) {
					continue
				}
				s.Publisher.PublishMembershipExpiring(expiring[i].ID, expiring[i].MemberID, expiring[i].EndDate)
				notified = append(notified, expiring[i].ID)
			}
			if len(notified) > 0 {
				if err := s.DB.Model(&models.Membership{}).Where("id IN ?", notified).
					Update("expiry_notified_at", now).Error; err != nil {
					logger.Warning("到期扫描: 标记提醒状态失败: %v", err)
				}
			}
		}
	}
	return result.RowsAffected, nil
}
