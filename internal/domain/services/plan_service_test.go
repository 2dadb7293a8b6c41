package services

import (
	"testing"

	"gymcore-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referencedPlan() *models.MembershipPlan {
	limit := 4
	plan := &models.MembershipPlan{
		BranchID:     1,
		Name:         "Gold Monthly",
		Description:  "基础月卡",
		PricePaise:   150000,
		DurationDays: 30,
		Version:      1,
		IsActive:     true,
		Benefits: []models.PlanBenefit{
			{BenefitType: "gym_access", Frequency: models.FrequencyUnlimited},
			{BenefitType: "sauna_session", Frequency: models.FrequencyMonthly, LimitCount: &limit},
		},
	}
	plan.ID = 10
	plan.Benefits[0].ID = 100
	plan.Benefits[0].PlanID = 10
	plan.Benefits[1].ID = 101
	plan.Benefits[1].PlanID = 10
	return plan
}

func TestNextPlanVersionLeavesOriginalGrantsIntact(t *testing.T) {
	plan := referencedPlan()
	newLimit := 1
	successor := NextPlanVersion(plan, map[string]interface{}{}, []models.PlanBenefit{
		{BenefitType: "sauna_session", Frequency: models.FrequencyMonthly, LimitCount: &newLimit},
	})

	// 改动落在新行上，不回写原套餐及其权益
	assert.Equal(t, uint(0), successor.ID)
	assert.Equal(t, 2, successor.Version)
	require.Len(t, successor.Benefits, 1)
	assert.Equal(t, uint(0), successor.Benefits[0].ID)
	assert.Equal(t, uint(0), successor.Benefits[0].PlanID)
	assert.Equal(t, 1, *successor.Benefits[0].LimitCount)

	assert.Equal(t, 1, plan.Version)
	require.Len(t, plan.Benefits, 2)
	assert.Equal(t, 4, *plan.Benefits[1].LimitCount)
}

func TestNextPlanVersionAppliesFieldUpdates(t *testing.T) {
	plan := referencedPlan()
	successor := NextPlanVersion(plan, map[string]interface{}{
		"name":          "Gold Monthly Plus",
		"price_paise":   int64(180000),
		"duration_days": 45,
	}, nil)

	assert.Equal(t, "Gold Monthly Plus", successor.Name)
	assert.Equal(t, int64(180000), successor.PricePaise)
	assert.Equal(t, 45, successor.DurationDays)
	// 未提交的字段沿用原值
	assert.Equal(t, "基础月卡", successor.Description)
	assert.True(t, successor.IsActive)
}

func TestNextPlanVersionCopiesBenefitsWhenOmitted(t *testing.T) {
	plan := referencedPlan()
	successor := NextPlanVersion(plan, map[string]interface{}{"name": "Gold v2"}, nil)

	require.Len(t, successor.Benefits, 2)
	assert.Equal(t, "gym_access", successor.Benefits[0].BenefitType)
	assert.Equal(t, "sauna_session", successor.Benefits[1].BenefitType)
	assert.Equal(t, 4, *successor.Benefits[1].LimitCount)
	// 复制件不携带原行主键
	assert.Equal(t, uint(0), successor.Benefits[0].ID)
	assert.Equal(t, uint(0), successor.Benefits[1].PlanID)
}

func TestValidateBenefits(t *testing.T) {
	limit := 2
	assert.NoError(t, validateBenefits([]models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyUnlimited},
		{BenefitType: "sauna_session", Frequency: models.FrequencyWeekly, LimitCount: &limit},
	}))

	assert.ErrorIs(t, validateBenefits([]models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyDaily},
		{BenefitType: "gym_access", Frequency: models.FrequencyWeekly},
	}), ErrBenefitDuplicated)

	assert.Error(t, validateBenefits([]models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.BenefitFrequency("yearly")},
	}))

	negative := -1
	assert.Error(t, validateBenefits([]models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyDaily, LimitCount: &negative},
	}))
}
