package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/pkg/logger"

	"gorm.io/gorm"
)

// 私教课包错误
var (
	ErrPackageNotFound    = errors.New("training package not found")
	ErrPackageExhausted   = errors.New("no sessions remaining in package")
	ErrPackageNotActive   = errors.New("training package is not active")
	ErrTrainerNotFound    = errors.New("trainer not found")
	ErrPackageHasSessions = errors.New("package already has consumed sessions")
)

// InterfaceTrainingService defines the personal training service interface
type InterfaceTrainingService interface {
	GetPackages(memberID, trainerID uint) ([]models.TrainingPackage, error)
	GetPackageByID(id uint) (*models.TrainingPackage, error)
	CreatePackage(pkg *models.TrainingPackage) (*models.Invoice, error)
	UseSession(packageID, trainerID uint, sessionDate time.Time, recordedBy, notes string) (*models.TrainingSession, error)
	CancelPackage(id uint) error
	ExpirePackages() (int64, error)
}

// TrainingService 提供私教课包服务
type TrainingService struct {
	DB       *gorm.DB
	Config   *config.Config
	Payments InterfacePaymentService
}

// NewTrainingService 创建一个新的私教服务
func NewTrainingService(db *gorm.DB, cfg *config.Config, paymentService InterfacePaymentService) InterfaceTrainingService {
	return &TrainingService{
		DB:       db,
		Config:   cfg,
		Payments: paymentService,
	}
}

// 1 GetPackages 查询课包列表，可按会员或教练过滤
func (s *TrainingService) GetPackages(memberID, trainerID uint) ([]models.TrainingPackage, error) {
	query := s.DB.Preload("Trainer")
	if memberID > 0 {
		query = query.Where("member_id = ?", memberID)
	}
	if trainerID > 0 {
		query = query.Where("trainer_id = ?", trainerID)
	}

	var packages []models.TrainingPackage
	if err := query.Order("created_at DESC").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// 2 GetPackageByID 获取课包详情（含消课记录）
func (s *TrainingService) GetPackageByID(id uint) (*models.TrainingPackage, error) {
	var pkg models.TrainingPackage
	if err := s.DB.Preload("Member").Preload("Trainer").Preload("Sessions").First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// 3 CreatePackage 售卖课包并开具待支付账单
func (s *TrainingService) CreatePackage(pkg *models.TrainingPackage) (*models.Invoice, error) {
	var member models.Member
	if err := s.DB.First(&member, pkg.MemberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var trainer models.Staff
	if err := s.DB.Where("id = ? AND role = ?", pkg.TrainerID, models.StaffRoleTrainer).First(&trainer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	if pkg.TotalSessions < 1 {
		return nil, errors.New("课时数至少为1")
	}

	pkg.BranchID = member.BranchID
	pkg.UsedSessions = 0
	pkg.Status = models.TrainingPackageStatusActive
	if err := s.DB.Create(pkg).Error; err != nil {
		return nil, err
	}

	invoice, err := s.Payments.CreateInvoice(member.BranchID, pkg.MemberID, nil, pkg.PricePaise, "私教课包: "+pkg.Name)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// 4 UseSession 消课。
// used_sessions < total_sessions 条件更新防止超卖，抢不到名额返回已耗尽。
func (s *TrainingService) UseSession(packageID, trainerID uint, sessionDate time.Time, recordedBy, notes string) (*models.TrainingSession, error) {
	pkg, err := s.GetPackageByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg.Status != models.TrainingPackageStatusActive {
		return nil, ErrPackageNotActive
	}
	if pkg.ExpiresOn != nil && time.Now().After(*pkg.ExpiresOn) {
		return nil, ErrPackageNotActive
	}

	if sessionDate.IsZero() {
		sessionDate = time.Now()
	}

	var session *models.TrainingSession
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TrainingPackage{}).
			Where("id = ? AND used_sessions < total_sessions", packageID).
			UpdateColumn("used_sessions", gorm.Expr("used_sessions + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPackageExhausted
		}

		session = &models.TrainingSession{
			PackageID:   packageID,
			TrainerID:   trainerID,
			SessionDate: sessionDate,
			RecordedBy:  recordedBy,
			Notes:       notes,
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		// 最后一节课消完自动结课
		return tx.Model(&models.TrainingPackage{}).
			Where("id = ? AND used_sessions >= total_sessions", packageID).
			Update("status", models.TrainingPackageStatusCompleted).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("课包 %d 消课一节，操作人 %s", packageID, recordedBy)
	return session, nil
}

// 5 CancelPackage 取消课包，已消过课的不允许取消
func (s *TrainingService) CancelPackage(id uint) error {
	pkg, err := s.GetPackageByID(id)
	if err != nil {
		return err
	}
	if pkg.UsedSessions > 0 {
		return ErrPackageHasSessions
	}
	return s.DB.Model(pkg).Update("status", models.TrainingPackageStatusCancelled).Error
}

// 6 ExpirePackages 过期扫描，将超过有效期的active课包置为expired
func (s *TrainingService) ExpirePackages() (int64, error) {
	result := s.DB.Model(&models.TrainingPackage{}).
		Where("status = ? AND expires_on IS NOT NULL AND expires_on < ?", models.TrainingPackageStatusActive, time.Now()).
		Update("status", models.TrainingPackageStatusExpired)
	return result.RowsAffected, result.Error
}
